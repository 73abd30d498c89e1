// Package netclient implements the network side of the offline engine:
// an HTTP(S) client, an S3 client for s3://bucket/key URLs and a router
// dispatching on the URL scheme. All of them return the response body on
// success and an error for anything the caller should treat as a failed
// attempt.
package netclient
