package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MJServices/neural-admin-panel/internal/metrics"
)

func TestSections_DegradeIndependently(t *testing.T) {
	before := testutil.ToFloat64(metrics.SectionFailures.WithLabelValues("sections_test", "broken"))

	var a, c int
	sec := newSections(context.Background(), "sections_test")
	sec.run("a", func(context.Context) error { a = 1; return nil })
	sec.run("broken", func(context.Context) error { return errors.New("query failed") })
	sec.run("panics", func(context.Context) error { panic("nil map") })
	sec.run("c", func(context.Context) error { c = 3; return nil })
	failed := sec.wait()

	if diff := cmp.Diff([]string{"broken", "panics"}, failed); diff != "" {
		t.Errorf("failed sections mismatch (-want +got):\n%s", diff)
	}
	if a != 1 || c != 3 {
		t.Errorf("healthy sections wrote a=%d c=%d, want 1 and 3", a, c)
	}
	after := testutil.ToFloat64(metrics.SectionFailures.WithLabelValues("sections_test", "broken"))
	if after-before != 1 {
		t.Errorf("section failures increased by %v, want 1", after-before)
	}
}

func TestSections_NoFailures(t *testing.T) {
	sec := newSections(context.Background(), "sections_test")
	sec.run("ok", func(context.Context) error { return nil })
	if failed := sec.wait(); len(failed) != 0 {
		t.Errorf("wait() = %v, want no failures", failed)
	}
}
