// Package minio stores replay archives in MinIO or any other S3-compatible
// service through the MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minioblob.NewStore(client, "replays", "run-2026/")
package minio
