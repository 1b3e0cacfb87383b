package exchange

import (
	"context"
	"fmt"

	"github.com/fondmemory/fond-memory/internal/model"
)

// Replacer swaps the whole album.
type Replacer interface {
	ReplaceAll(ctx context.Context, ms model.Album) error
}

// Restorer writes imported payloads back to media storage.
type Restorer interface {
	Restore(ctx context.Context, album model.Album, payloads map[string][]byte) (int, error)
}

// Apply parses data and, only if it is a well-formed document, restores its
// payloads and replaces the album with its memories. A parse failure leaves
// dst untouched and is returned as *ImportParseError.
func Apply(ctx context.Context, data []byte, dst Replacer, payloads Restorer) (*Document, error) {
	doc, err := Import(data)
	if err != nil {
		return nil, err
	}

	if len(doc.Payloads) > 0 && payloads != nil {
		if _, err := payloads.Restore(ctx, doc.Memories, doc.Payloads); err != nil {
			return nil, fmt.Errorf("restore media: %w", err)
		}
	}

	if err := dst.ReplaceAll(ctx, doc.Memories); err != nil {
		return doc, err
	}
	return doc, nil
}
