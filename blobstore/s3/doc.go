// Package s3 stores replay archives in Amazon S3.
//
// Store maps blob names to keys below a root prefix. Small blobs are put in
// one request with a CRC32C checksum; larger ones go through the multipart
// uploader. DDBCommitStore adds DynamoDB conditional writes for the CURRENT
// pointer so that concurrent replay writers cannot lose a commit.
package s3
