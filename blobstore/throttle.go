package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore limits the read throughput of the wrapped store.
// It is meant for remote stores shared with other workloads.
type ThrottledStore struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewThrottledStore wraps inner with a read budget of bytesPerSec.
// If bytesPerSec <= 0, reads are unlimited.
func NewThrottledStore(inner BlobStore, bytesPerSec int) *ThrottledStore {
	lim := rate.NewLimiter(rate.Inf, 0)
	if bytesPerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &ThrottledStore{inner: inner, limiter: lim}
}

// Open opens a throttled blob.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, limiter: s.limiter}, nil
}

type throttledBlob struct {
	Blob
	limiter *rate.Limiter
}

// ReadAt waits for budget before each chunk. Chunks never exceed the burst,
// so WaitN cannot fail on size.
func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if b.limiter.Limit() == rate.Inf {
		return b.Blob.ReadAt(ctx, p, off)
	}
	chunk := b.limiter.Burst()
	total := 0
	for total < len(p) {
		n := min(chunk, len(p)-total)
		if err := b.limiter.WaitN(ctx, n); err != nil {
			return total, err
		}
		m, err := b.Blob.ReadAt(ctx, p[total:total+n], off+int64(total))
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
