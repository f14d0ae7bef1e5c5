package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "backups"))
	require.NoError(t, err)

	path, err := s.Put(context.Background(), "2024/crm.json", []byte(`{"a":1}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "2024", "crm.json"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	_, err = s.Put(context.Background(), "../escape.json", nil, "")
	assert.Error(t, err)
	_, err = s.Put(context.Background(), "", nil, "")
	assert.Error(t, err)

	_, err = NewLocalStore("")
	assert.Error(t, err)
}

func TestNewS3Store_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  config.BackupConfig
		msg  string
	}{
		{"missing bucket", config.BackupConfig{AccessKeyID: "k", SecretAccessKey: "s"}, "bucket is required"},
		{"missing keys", config.BackupConfig{Bucket: "b"}, "secret key are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Store(ctx, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	s, err := NewS3Store(ctx, config.BackupConfig{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s", Endpoint: "localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "b", s.Bucket())
}

func TestS3Store_Put(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	s, err := NewS3Store(context.Background(), config.BackupConfig{
		Bucket:          "crm-backups",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	loc, err := s.Put(context.Background(), "crm.json", []byte("payload"), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "s3://crm-backups/crm.json", loc)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/crm-backups/crm.json", path)
	assert.Contains(t, string(body), "payload")
}
