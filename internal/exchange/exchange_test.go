package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondmemory/fond-memory/internal/album"
	"github.com/fondmemory/fond-memory/internal/media"
	"github.com/fondmemory/fond-memory/internal/model"
	"github.com/fondmemory/fond-memory/internal/store"
)

func sample() model.Album {
	return model.Album{
		{
			ID: "01HZ0000000000000000000001", Title: "Beach Day", Category: model.CategoryFamily,
			CreatedAt: 1700000000000,
			Media: []model.MediaItem{
				{ID: "i1", Kind: model.KindImage, URL: "blob:http://localhost/a", Name: "a.png", Size: 10, Type: "image/png"},
				{ID: "i2", Kind: model.KindAudio, URL: "blob:http://localhost/b", Name: "b.webm", Size: 20, Type: "audio/webm"},
			},
		},
		{
			ID: "01HZ0000000000000000000002", Title: "Rex", Category: model.CategoryPets,
			CreatedAt: 1700000005000,
			Media: []model.MediaItem{
				{ID: "i3", Kind: model.KindVideo, URL: "blob:http://localhost/c", Name: "c.mp4", Size: 30, Type: "video/mp4"},
			},
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	a := sample()
	data, err := Export(a, nil, time.UnixMilli(1700000009000))
	require.NoError(t, err)

	doc, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Equal(t, int64(1700000009000), doc.ExportedAt.UnixMilli())
	assert.Equal(t, a, doc.Memories)
	assert.Empty(t, doc.Payloads)
}

func TestExportEmptyAlbum(t *testing.T) {
	data, err := Export(nil, nil, time.Now())
	require.NoError(t, err)

	doc, err := Import(data)
	require.NoError(t, err)
	assert.NotNil(t, doc.Memories)
	assert.Len(t, doc.Memories, 0)
}

func TestImportLegacyArray(t *testing.T) {
	legacy, err := json.Marshal(sample())
	require.NoError(t, err)

	doc, err := Import(legacy)
	require.NoError(t, err)
	assert.Equal(t, LegacyVersion, doc.Version)
	assert.Equal(t, sample(), doc.Memories)
	assert.True(t, doc.ExportedAt.IsZero())
}

func TestImportRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bare object", `{}`},
		{"empty", ``},
		{"not json", `this is not json`},
		{"string", `"memories"`},
		{"null", `null`},
		{"truncated", `[{"id":"a"`},
		{"trailing data", `[] []`},
		{"unknown version", `{"version":2,"memories":[]}`},
		{"missing memories", `{"version":1}`},
		{"null memories", `{"version":1,"memories":null}`},
		{"unknown field", `[{"id":"a","title":"t","category":"family","createdAt":1,"media":[],"extra":true}]`},
		{"wrong type", `[{"id":"a","title":7,"category":"family","createdAt":1,"media":[]}]`},
		{"missing id", `[{"title":"t","category":"family","createdAt":1,"media":[]}]`},
		{"duplicate id", `[{"id":"a","title":"t","category":"family","createdAt":1,"media":[]},{"id":"a","title":"u","category":"pets","createdAt":2,"media":[]}]`},
		{"bad category", `[{"id":"a","title":"t","category":"friends","createdAt":1,"media":[]}]`},
		{"missing media", `[{"id":"a","title":"t","category":"family","createdAt":1}]`},
		{"bad kind", `[{"id":"a","title":"t","category":"family","createdAt":1,"media":[{"id":"m","kind":"pdf","url":"","name":"","size":0,"type":""}]}]`},
		{"null element", `[null]`},
		{"transient payload key", `{"version":1,"memories":[],"payloads":{"blob:http://x":"AA=="}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.data))
			var perr *ImportParseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &perr), "expected ImportParseError, got %T: %v", err, err)
		})
	}
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApplyLeavesAlbumUnchangedOnParseError(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	p := album.NewSlotPersistence(db, "")
	s, err := album.Open(ctx, p)
	require.NoError(t, err)
	for _, m := range sample() {
		require.NoError(t, s.Add(ctx, m))
	}
	before, _, err := db.ReadSlot(ctx, album.DefaultSlotKey)
	require.NoError(t, err)

	_, err = Apply(ctx, []byte(`{}`), s, media.NewLibrary(db))
	var perr *ImportParseError
	require.ErrorAs(t, err, &perr)

	after, _, err := db.ReadSlot(ctx, album.DefaultSlotKey)
	require.NoError(t, err)
	assert.Equal(t, before, after, "durable album is byte-for-byte unchanged")
	assert.Equal(t, sample(), s.Memories())
}

func TestApplyWithPayloads(t *testing.T) {
	ctx := context.Background()

	src := newTestStore(t)
	f := media.NewFactory(src)
	item, err := f.FromBytes(ctx, "beach.png", "image/png", []byte("pixels"))
	require.NoError(t, err)
	m, err := album.NewMemory(album.Draft{Title: "Beach Day", Media: []model.MediaItem{item}}, time.UnixMilli(1700000000000))
	require.NoError(t, err)
	srcAlbum := model.Album{m}

	payloads, err := media.NewLibrary(src).Payloads(ctx, srcAlbum)
	require.NoError(t, err)
	data, err := Export(srcAlbum, payloads, time.Now())
	require.NoError(t, err)

	dst := newTestStore(t)
	s, err := album.Open(ctx, album.NewSlotPersistence(dst, ""))
	require.NoError(t, err)
	lib := media.NewLibrary(dst)
	require.NoError(t, s.Add(ctx, sample()[0]))

	doc, err := Apply(ctx, data, s, lib)
	require.NoError(t, err)
	assert.Len(t, doc.Payloads, 1)
	assert.Equal(t, srcAlbum, s.Memories())

	b, err := lib.Open(ctx, s.Memories()[0].Media[0])
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b.Data))
}

func TestImportRejectsTamperedPayload(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	item, err := media.NewFactory(db).FromBytes(ctx, "a.png", "image/png", []byte("real"))
	require.NoError(t, err)

	a := model.Album{{ID: "m", Category: model.CategoryFamily, Media: []model.MediaItem{item}}}
	data, err := Export(a, map[string][]byte{item.URL: []byte("fake")}, time.Now())
	require.NoError(t, err)

	_, err = Import(data)
	var perr *ImportParseError
	assert.ErrorAs(t, err, &perr)
}
