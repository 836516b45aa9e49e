package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/metrics"
)

// sections runs the independent queries behind one read endpoint
// concurrently. A failing section is logged and counted, and whatever it
// was meant to fill keeps its zero value; the other sections are
// unaffected.
//
// Each section must write only to variables no other section touches.
type sections struct {
	ctx      context.Context
	endpoint string
	wg       sync.WaitGroup
	mu       sync.Mutex
	failed   []string
}

func newSections(ctx context.Context, endpoint string) *sections {
	return &sections{ctx: ctx, endpoint: endpoint}
}

func (s *sections) run(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		err := s.call(fn)
		metrics.RecordSection(s.endpoint, name, time.Since(start), err != nil)
		if err != nil {
			logger.Ctx(s.ctx).Error("dashboard section degraded",
				"endpoint", s.endpoint,
				"section", name,
				"error", err)
			s.mu.Lock()
			s.failed = append(s.failed, name)
			s.mu.Unlock()
		}
	}()
}

// call turns a panicking section into a failed one.
func (s *sections) call(fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(s.ctx)
}

// wait blocks until every section has finished and returns the names of
// the failed ones, sorted.
func (s *sections) wait() []string {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.Strings(s.failed)
	return s.failed
}

// degrade logs and counts a failure outside of a fan-out, for endpoints
// whose queries depend on one another.
func degrade(ctx context.Context, endpoint, section string, err error) {
	metrics.RecordSection(endpoint, section, 0, true)
	logger.Ctx(ctx).Error("dashboard section degraded",
		"endpoint", endpoint,
		"section", section,
		"error", err)
}
