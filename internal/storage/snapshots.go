package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SnapshotPrefix is the key prefix under which export snapshots live.
const SnapshotPrefix = "exports/"

const snapshotSuffix = ".json.zst"

// SnapshotInfo describes a stored export snapshot
type SnapshotInfo struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	// Size is the compressed size in bytes.
	Size int64 `json:"size"`
}

// ObjectStore is the subset of S3Storage used by Snapshots
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Snapshots stores JSON export documents zstd-compressed under SnapshotPrefix.
type Snapshots struct {
	store ObjectStore
}

// NewSnapshots wraps an object store
func NewSnapshots(store ObjectStore) *Snapshots {
	return &Snapshots{store: store}
}

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic(fmt.Sprintf("storage: zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic(fmt.Sprintf("storage: zstd decoder: %v", err))
	}
}

// SnapshotKey names a snapshot taken at t:
// exports/2025/06/15/20250615T120000Z-<uuid>.json.zst
func SnapshotKey(t time.Time, id uuid.UUID) string {
	t = t.UTC()
	return fmt.Sprintf("%s%s/%s-%s%s", SnapshotPrefix, t.Format("2006/01/02"), t.Format("20060102T150405Z"), id, snapshotSuffix)
}

// parseSnapshotKey recovers the creation time encoded in a snapshot key.
func parseSnapshotKey(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, SnapshotPrefix) || !strings.HasSuffix(key, snapshotSuffix) {
		return time.Time{}, false
	}
	name := path.Base(key)
	stamp, _, ok := strings.Cut(name, "-")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102T150405Z", stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Save compresses doc and stores it as a new snapshot taken at now
func (s *Snapshots) Save(ctx context.Context, doc []byte, now time.Time) (SnapshotInfo, error) {
	ctx, span := tracer.Start(ctx, "storage.save_snapshot")
	defer span.End()

	compressed := encoder.EncodeAll(doc, make([]byte, 0, len(doc)/4))
	key := SnapshotKey(now, uuid.New())
	if err := s.store.Upload(ctx, key, compressed, "application/zstd"); err != nil {
		return SnapshotInfo{}, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return SnapshotInfo{Key: key, CreatedAt: now.UTC().Truncate(time.Second), Size: int64(len(compressed))}, nil
}

// Load returns the decompressed JSON document stored under key
func (s *Snapshots) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "storage.load_snapshot")
	defer span.End()

	if _, ok := parseSnapshotKey(key); !ok {
		return nil, fmt.Errorf("load snapshot %q: %w", key, ErrObjectNotFound)
	}
	compressed, err := s.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	doc, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return doc, nil
}

// List returns the stored snapshots, newest first
func (s *Snapshots) List(ctx context.Context) ([]SnapshotInfo, error) {
	objects, err := s.store.List(ctx, SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(objects))
	for _, obj := range objects {
		created, ok := parseSnapshotKey(obj.Key)
		if !ok {
			continue
		}
		snapshots = append(snapshots, SnapshotInfo{Key: obj.Key, CreatedAt: created, Size: obj.Size})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].Key > snapshots[j].Key
		}
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Prune deletes every snapshot except the newest keep and returns how many
// were removed. keep <= 0 removes nothing.
func (s *Snapshots) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	ctx, span := tracer.Start(ctx, "storage.prune_snapshots")
	defer span.End()

	snapshots, err := s.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	if len(snapshots) <= keep {
		return 0, nil
	}

	removed := 0
	for _, snap := range snapshots[keep:] {
		if err := s.store.Delete(ctx, snap.Key); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return removed, fmt.Errorf("failed to prune snapshot %q: %w", snap.Key, err)
		}
		removed++
	}
	span.SetAttributes(attribute.Int("snapshots.removed", removed))
	return removed, nil
}

var _ ObjectStore = (*S3Storage)(nil)
