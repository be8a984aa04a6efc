package document

import (
	"context"
	"strings"
	"testing"

	"github.com/kailas-cloud/crudex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	jsonGetMultiFn func(ctx context.Context, keys []string) ([][]byte, error)
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonSetNXFn    func(ctx context.Context, key string, data []byte) (bool, error)
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	delFn          func(ctx context.Context, key string) error
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) JSONSetNX(ctx context.Context, key string, data []byte) (bool, error) {
	if m.jsonSetNXFn != nil {
		return m.jsonSetNXFn(ctx, key, data)
	}
	return true, nil
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

// withDocuments serves docs (key -> JSON) through Scan and JSONGetMulti.
func withDocuments(t *testing.T, ms *mockStore, docs map[string]string) {
	t.Helper()
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		prefix := strings.TrimSuffix(pattern, "*")
		var keys []string
		for k := range docs {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		return keys, nil
	}
	ms.jsonGetMultiFn = func(_ context.Context, keys []string) ([][]byte, error) {
		out := make([][]byte, len(keys))
		for i, k := range keys {
			if v, ok := docs[k]; ok {
				out[i] = []byte(v)
			}
		}
		return out, nil
	}
}
