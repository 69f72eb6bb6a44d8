package kanjisim

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hupe1980/kanjisim/blobstore"
	"github.com/hupe1980/kanjisim/dataset"
)

// Source names where the dataset document is read from.
type Source interface {
	fmt.Stringer
	load(ctx context.Context, opts []dataset.Option) (*dataset.Snapshot, error)
}

// Local reads the dataset document at path. The file is memory-mapped;
// a .zst, .zstd or .lz4 extension selects the decompressor.
//
//	eng, err := kanjisim.Open(ctx, kanjisim.Local("./kanji.json.zst"))
func Local(path string) Source {
	return localSource{path: path}
}

// Remote reads the named dataset blob from store (S3, MinIO, memory).
//
//	store, _ := s3.New(ctx, "datasets", s3.WithPrefix("kanji/"))
//	eng, err := kanjisim.Open(ctx, kanjisim.Remote(store, "kanji.json.zst"))
func Remote(store blobstore.BlobStore, name string) Source {
	return remoteSource{store: store, name: name}
}

// Reader reads the dataset document from r. Compression is sniffed from
// the content.
func Reader(r io.Reader) Source {
	return readerSource{r: r}
}

type localSource struct {
	path string
}

func (s localSource) String() string { return s.path }

func (s localSource) load(ctx context.Context, opts []dataset.Option) (*dataset.Snapshot, error) {
	store := blobstore.NewLocalStore(filepath.Dir(s.path))
	return dataset.Open(ctx, store, filepath.Base(s.path), opts...)
}

type remoteSource struct {
	store blobstore.BlobStore
	name  string
}

func (s remoteSource) String() string { return "remote:" + s.name }

func (s remoteSource) load(ctx context.Context, opts []dataset.Option) (*dataset.Snapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("kanjisim: remote source %q has no store", s.name)
	}
	return dataset.Open(ctx, s.store, s.name, opts...)
}

type readerSource struct {
	r io.Reader
}

func (readerSource) String() string { return "reader" }

func (s readerSource) load(ctx context.Context, opts []dataset.Option) (*dataset.Snapshot, error) {
	return dataset.Load(ctx, s.r, opts...)
}
