// Package publish copies finished documents to object storage.
//
// Publishing is optional: the CLI enables it when a bucket is configured,
// and a failed upload only produces a warning since the local document
// is already complete.
package publish
