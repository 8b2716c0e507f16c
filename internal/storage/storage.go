// Package storage persists uploaded media assets in an object store.
package storage

import "context"

// Asset describes a stored blob.
type Asset struct {
	Key string
	URL string
}

// BlobStore saves and removes media blobs. Upload consumes the local file at
// path: the file is deleted from disk whether or not the upload succeeds.
type BlobStore interface {
	Upload(ctx context.Context, path, keyPrefix string) (Asset, error)
	Delete(ctx context.Context, key string) error
}
