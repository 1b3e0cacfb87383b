// Package store provides the durable album slot and the content-addressed
// blob store, both backed by SQLite.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrBlobNotFound is returned when no blob exists for a digest.
var ErrBlobNotFound = errors.New("blob not found")

// Blob is a stored media payload, keyed by the hex SHA-256 of its data.
type Blob struct {
	Digest      string    `json:"digest"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Slots is a durable key-value store holding one document per key.
type Slots interface {
	// ReadSlot returns the value stored under key. ok is false when the key
	// has never been written.
	ReadSlot(ctx context.Context, key string) (value []byte, ok bool, err error)

	// WriteSlot replaces the value stored under key.
	WriteSlot(ctx context.Context, key string, value []byte) error
}

// Blobs stores media payloads by content digest.
type Blobs interface {
	// PutBlob stores data and returns its digest. Storing the same bytes
	// twice is a no-op.
	PutBlob(ctx context.Context, contentType string, data []byte) (string, error)

	// GetBlob returns the blob for digest, or ErrBlobNotFound.
	GetBlob(ctx context.Context, digest string) (*Blob, error)

	// SweepBlobs deletes every blob whose digest is not in keep and reports
	// how many were removed.
	SweepBlobs(ctx context.Context, keep map[string]struct{}) (int, error)
}
