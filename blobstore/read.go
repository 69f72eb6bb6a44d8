package blobstore

import (
	"context"
	"io"
	"slices"
)

// NewReader returns an io.Reader over the whole blob bound to ctx.
func NewReader(ctx context.Context, b Blob) io.Reader {
	return io.NewSectionReader(ctxReaderAt{ctx: ctx, b: b}, 0, b.Size())
}

type ctxReaderAt struct {
	ctx context.Context
	b   Blob
}

func (r ctxReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return r.b.ReadAt(r.ctx, p, off)
}

// ReadAll reads the named blob into memory.
//
// Stores implementing Fetcher are asked directly; mapped blobs are copied
// before the mapping is released; everything else goes through ReadAt.
func ReadAll(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	if f, ok := s.(Fetcher); ok {
		return f.Fetch(ctx, name)
	}

	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return slices.Clone(data), nil
	}

	buf := make([]byte, 0, b.Size())
	w := &sliceWriter{buf: buf}
	if _, err := io.Copy(w, NewReader(ctx, b)); err != nil {
		return nil, err
	}
	return w.buf, nil
}

type sliceWriter struct {
	buf []byte
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
