// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object store. This package uses the official
// MinIO Go client and also works with Ceph, SeaweedFS and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "datasets", "kanji/")
//	eng, err := kanjisim.Open(ctx, kanjisim.Remote(store, "kanji.json"))
package minio
