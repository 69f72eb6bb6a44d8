// Package blobstore provides read access to the immutable dataset snapshots
// the engine is built from.
//
// BlobStore is the interface for opening named blobs. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory blobs for tests and embedded datasets
//   - s3.Store: Amazon S3 with range reads and whole-object downloads
//   - minio.Store: MinIO and other S3-compatible storage
//
// NewThrottledStore wraps any store with a bytes-per-second read budget.
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	}
//
// Stores that can download a whole object more efficiently than by ranged
// reads implement Fetcher; ReadAll prefers it.
package blobstore
