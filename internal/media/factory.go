package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fondmemory/fond-memory/internal/model"
	"github.com/fondmemory/fond-memory/internal/store"
)

// Factory builds MediaItems from raw sources. Payloads are written to the
// blob store so the returned url stays playable across restarts.
type Factory struct {
	blobs  store.Blobs
	strict bool
}

// ErrUnsupportedType is returned by a strict Factory for payloads that are
// not image, video or audio.
var ErrUnsupportedType = errors.New("unsupported media type")

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// OnlyAllowed makes the Factory apply the picker filter (see Allowed)
// before anything is stored.
func OnlyAllowed() FactoryOption {
	return func(f *Factory) { f.strict = true }
}

// NewFactory returns a Factory writing payloads to blobs.
func NewFactory(blobs store.Blobs, opts ...FactoryOption) *Factory {
	f := &Factory{blobs: blobs}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FromBytes stores data and returns a new item. name, size and contentType
// are carried through unchanged; no size checks are applied, and types are
// only checked by a strict Factory.
func (f *Factory) FromBytes(ctx context.Context, name, contentType string, data []byte) (model.MediaItem, error) {
	if f.strict && !Allowed(contentType) {
		return model.MediaItem{}, fmt.Errorf("%w: %s is %q", ErrUnsupportedType, name, contentType)
	}
	digest, err := f.blobs.PutBlob(ctx, contentType, data)
	if err != nil {
		return model.MediaItem{}, fmt.Errorf("store payload %q: %w", name, err)
	}
	return model.MediaItem{
		ID:   model.NewID(),
		Kind: Classify(contentType),
		URL:  BlobRef(digest).String(),
		Name: name,
		Size: int64(len(data)),
		Type: contentType,
	}, nil
}

// FromFile reads a file from disk and stores it. When contentType is empty
// it is resolved from the extension or the file contents.
func (f *Factory) FromFile(ctx context.Context, path, contentType string) (model.MediaItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.MediaItem{}, fmt.Errorf("read media: %w", err)
	}
	name := filepath.Base(path)
	if contentType == "" {
		contentType = DetectType(name, data)
	}
	return f.FromBytes(ctx, name, contentType, data)
}
