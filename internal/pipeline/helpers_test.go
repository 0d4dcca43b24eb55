package pipeline_test

import (
	"context"
	"iter"
	"sync"
	"testing"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/schema"
	"github.com/stretchr/testify/require"
)

func registry(t *testing.T) *schema.Registry {
	t.Helper()

	r, err := schema.Default()
	require.NoError(t, err)

	return r
}

func csvAttachment(name, content string) *domain.Attachment {
	return &domain.Attachment{
		Filename: name,
		Source:   "test",
		Format:   domain.FormatCSV,
		Content:  []byte(content),
	}
}

// memStore is an in-memory hash store. Writes done inside a transaction are
// applied only when the transaction commits.
type memStore struct {
	mu        sync.Mutex
	hashes    map[string]*domain.SeenFile
	runs      map[string]domain.RunReport
	existsErr error
	recordErr error
	saveErr   error
}

func newMemStore() *memStore {
	return &memStore{
		hashes: make(map[string]*domain.SeenFile),
		runs:   make(map[string]domain.RunReport),
	}
}

type memTxKey struct{}

type memTx struct {
	hashes []*domain.SeenFile
	runs   []domain.RunReport
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := &memTx{}
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range tx.hashes {
		if _, ok := s.hashes[f.Hash]; !ok {
			s.hashes[f.Hash] = f
		}
	}
	for _, r := range tx.runs {
		s.runs[r.RunID] = r
	}

	return nil
}

func (s *memStore) Exists(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.existsErr != nil {
		return false, s.existsErr
	}

	_, ok := s.hashes[hash]
	return ok, nil
}

func (s *memStore) Record(ctx context.Context, files ...*domain.SeenFile) error {
	if s.recordErr != nil {
		return s.recordErr
	}

	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		tx.hashes = append(tx.hashes, files...)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range files {
		if _, ok := s.hashes[f.Hash]; !ok {
			s.hashes[f.Hash] = f
		}
	}

	return nil
}

func (s *memStore) SaveRun(ctx context.Context, report *domain.RunReport) error {
	if s.saveErr != nil {
		return s.saveErr
	}

	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		tx.runs = append(tx.runs, *report)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[report.RunID] = *report

	return nil
}

func (s *memStore) hashCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.hashes)
}

func (s *memStore) run(id string) (domain.RunReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	return r, ok
}

// sliceExtractor yields fresh copies of its attachments on every run, the way
// a mailbox returns the same messages again.
type sliceExtractor struct {
	attachments []*domain.Attachment
	err         error
	queries     []string
}

func (e *sliceExtractor) Extract(_ context.Context, query string) iter.Seq2[*domain.Attachment, error] {
	e.queries = append(e.queries, query)

	return func(yield func(*domain.Attachment, error) bool) {
		for _, a := range e.attachments {
			cp := *a
			if !yield(&cp, nil) {
				return
			}
		}
		if e.err != nil {
			yield(nil, e.err)
		}
	}
}
