// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	eng, err := kanjisim.Open(ctx, kanjisim.Remote(store, "kanji.json.zst"))
//
// # Features
//
//   - Range reads through Blob.ReadAt
//   - Whole-object downloads with the transfer manager (parallel parts)
//   - Configurable prefix for multi-tenant buckets
package s3
