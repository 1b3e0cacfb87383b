package album

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fondmemory/fond-memory/internal/model"
	"github.com/fondmemory/fond-memory/internal/store"
)

// DefaultSlotKey names the durable slot holding the album.
const DefaultSlotKey = "fond-memory-album-v1"

// Persistence loads and saves the whole album.
type Persistence interface {
	// Load returns the stored album. A never-written slot yields an empty
	// album and no error.
	Load(ctx context.Context) (model.Album, error)

	// Save replaces the stored album.
	Save(ctx context.Context, a model.Album) error
}

// SlotPersistence stores the album as a JSON array under one slot key.
type SlotPersistence struct {
	slots store.Slots
	key   string
}

// NewSlotPersistence returns a Persistence writing to key in slots.
func NewSlotPersistence(slots store.Slots, key string) *SlotPersistence {
	if key == "" {
		key = DefaultSlotKey
	}
	return &SlotPersistence{slots: slots, key: key}
}

func (p *SlotPersistence) Load(ctx context.Context) (model.Album, error) {
	raw, ok, err := p.slots.ReadSlot(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.Album{}, nil
	}
	var a model.Album
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse slot %q: %w", p.key, err)
	}
	if a == nil {
		a = model.Album{}
	}
	return a, nil
}

func (p *SlotPersistence) Save(ctx context.Context, a model.Album) error {
	if a == nil {
		a = model.Album{}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.slots.WriteSlot(ctx, p.key, b)
}
