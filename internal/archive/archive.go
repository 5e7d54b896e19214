// Package archive persists completed flow runs to blob storage. Any bucket
// scheme gocloud.dev supports can hold the archive; runs are stored as JSON
// under <prefix><flow-id>/<run-id>.json
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/volleyhq/volley/pkg/api"
)

// Store reads and writes archived flow runs in a blob bucket
type Store struct {
	bucket *blob.Bucket
	prefix string
}

var ErrNotFound = errors.New("archived run not found")

// NewStore opens the bucket at the given URL
func NewStore(ctx context.Context, bucketURL, prefix string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{bucket: bucket, prefix: prefix}, nil
}

// Save writes a run result, replacing any previous copy of the same run
func (s *Store) Save(ctx context.Context, res *api.FlowResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.bucket.WriteAll(ctx, s.keyFor(res.FlowID, res.ID), data, nil)
}

// Get reads one archived run
func (s *Store) Get(
	ctx context.Context, flowID, runID api.ID,
) (*api.FlowResult, error) {
	data, err := s.bucket.ReadAll(ctx, s.keyFor(flowID, runID))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var res api.FlowResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns the archived runs for a flow, most recent first
func (s *Store) List(
	ctx context.Context, flowID api.ID,
) ([]*api.HistoryEntry, error) {
	prefix := s.prefix + string(flowID) + "/"
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})

	var entries []*api.HistoryEntry
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		runID := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), ".json")
		entries = append(entries, &api.HistoryEntry{
			RunID:      api.ID(runID),
			ArchivedAt: obj.ModTime,
			SizeBytes:  obj.Size,
		})
	}

	slices.SortStableFunc(entries, func(a, b *api.HistoryEntry) int {
		return b.ArchivedAt.Compare(a.ArchivedAt)
	})
	return entries, nil
}

// Close releases the bucket
func (s *Store) Close() error {
	return s.bucket.Close()
}

func (s *Store) keyFor(flowID, runID api.ID) string {
	return s.prefix + string(flowID) + "/" + string(runID) + ".json"
}
