package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fondmemory/fond-memory/internal/model"
	"github.com/fondmemory/fond-memory/internal/store"
)

// Library resolves and releases the payloads behind media urls.
type Library struct {
	blobs store.Blobs
}

// NewLibrary returns a Library over blobs.
func NewLibrary(blobs store.Blobs) *Library {
	return &Library{blobs: blobs}
}

// Open returns the payload behind item's url. Transient urls fail with
// ErrTransientRef.
func (l *Library) Open(ctx context.Context, item model.MediaItem) (*store.Blob, error) {
	digest, err := ParseRef(item.URL).Digest()
	if err != nil {
		return nil, err
	}
	return l.blobs.GetBlob(ctx, digest)
}

// Sweep releases every payload not referenced by live.
func (l *Library) Sweep(ctx context.Context, live model.Album) (int, error) {
	keep := make(map[string]struct{})
	for url := range live.Refs() {
		if d, err := ParseRef(url).Digest(); err == nil {
			keep[d] = struct{}{}
		}
	}
	return l.blobs.SweepBlobs(ctx, keep)
}

// Payloads collects the stored bytes for every persistent ref in album,
// keyed by url. Missing blobs are skipped.
func (l *Library) Payloads(ctx context.Context, album model.Album) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for url := range album.Refs() {
		digest, err := ParseRef(url).Digest()
		if err != nil {
			continue
		}
		b, err := l.blobs.GetBlob(ctx, digest)
		if err != nil {
			if errors.Is(err, store.ErrBlobNotFound) {
				continue
			}
			return nil, err
		}
		out[url] = b.Data
	}
	return out, nil
}

// Restore writes payloads back into the blob store. Each payload must hash
// to the digest named by its url.
func (l *Library) Restore(ctx context.Context, album model.Album, payloads map[string][]byte) (int, error) {
	types := make(map[string]string)
	for _, m := range album {
		for _, it := range m.Media {
			types[it.URL] = it.Type
		}
	}

	restored := 0
	for url, data := range payloads {
		want, err := ParseRef(url).Digest()
		if err != nil {
			return restored, err
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != want {
			return restored, fmt.Errorf("payload for %s does not match its digest", want[:12])
		}
		if _, err := l.blobs.PutBlob(ctx, types[url], data); err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}
