package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

func TestMinioStore_Destroy(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)

	store := &MinioStore{Client: client, Bucket: "ads-media"}
	require.NoError(t, store.Destroy(context.Background(), "ads/abc/photo-1.jpg"))
	require.NoError(t, store.Destroy(context.Background(), ""))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"DELETE /ads-media/ads/abc/photo-1.jpg"}, calls)
}

func TestNewMinioStore(t *testing.T) {
	cfg := &config.Config{}
	store, err := NewMinioStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	cfg.Minio.Endpoint = "localhost:9000"
	_, err = NewMinioStore(cfg)
	assert.Error(t, err)

	cfg.Minio.AccessKey, cfg.Minio.SecretKey = "k", "s"
	cfg.Minio.Bucket = "ads-media"
	store, err = NewMinioStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ads-media", store.Bucket)
}
