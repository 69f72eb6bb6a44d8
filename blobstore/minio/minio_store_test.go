package minio

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/hupe1980/kanjisim/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Set KANJISIM_MINIO_ENDPOINT (e.g. localhost:9000) to enable it.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("KANJISIM_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("KANJISIM_MINIO_ENDPOINT not set")
	}
	bucket := "test-kanjisim"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte(`{"version":"1","kanji":[]}`)
	_, err = client.PutObject(ctx, bucket, "test-prefix/kanji.json", bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	require.NoError(t, err)

	store := NewStore(client, bucket, "test-prefix/")

	blob, err := store.Open(ctx, "kanji.json")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 7)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "version", string(buf[:n]))

	got, err := blobstore.ReadAll(ctx, store, "kanji.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = store.Open(ctx, "missing.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_Key(t *testing.T) {
	s := NewStore(nil, "b", "kanji/")
	assert.Equal(t, "kanji/data.json", s.key("data.json"))
	assert.Equal(t, "data.json", NewStore(nil, "b", "").key("data.json"))
}
