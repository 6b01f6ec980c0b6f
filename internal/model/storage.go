package model

import (
	"context"
	"io"
)

// DocumentStore is a server-side backend holding the one document of a tier.
type DocumentStore interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// RemoteTier is one remote backend in the client's fallback cascade.
// Load returns ErrNotFound or any other error when the tier has no usable
// document; callers treat every error as "absent".
type RemoteTier interface {
	Name() string
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// DurableStore is the device-local single-record database.
type DurableStore interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// FastCache is the synchronous device-local cache. Get treats corrupt or
// invalid entries as absent.
type FastCache interface {
	Get() (*Document, bool)
	Set(doc *Document) error
}

// BlobStorage stores opaque objects by key.
type BlobStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repository is the read/write surface the portal services work through: a
// synchronous snapshot of the authoritative document and a whole-document
// save.
type Repository interface {
	Data() *Document
	Save(ctx context.Context, doc *Document) error
}
