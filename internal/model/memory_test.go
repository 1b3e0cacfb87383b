package model

import (
	"encoding/json"
	"testing"
)

func TestCategoryLabels(t *testing.T) {
	tests := []struct {
		c     Category
		valid bool
		label string
	}{
		{CategoryFamily, true, "Família"},
		{CategoryCouple, true, "Casal"},
		{CategoryPets, true, "Pets"},
		{CategoryLegacy, true, "Entes queridos"},
		{"friends", false, "friends"},
		{"", false, ""},
	}
	for _, tt := range tests {
		if got := tt.c.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.c, got, tt.valid)
		}
		if got := tt.c.Label(); got != tt.label {
			t.Errorf("%q.Label() = %q, want %q", tt.c, got, tt.label)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Album{{ID: "m1", Media: []MediaItem{{ID: "i1", Name: "a.png"}}}}
	c := a.Clone()
	c[0].Media[0].Name = "changed"
	c[0].Title = "changed"

	if a[0].Media[0].Name != "a.png" || a[0].Title != "" {
		t.Fatalf("clone shares state with original: %+v", a[0])
	}
	if Album(nil).Clone() != nil {
		t.Fatal("nil album should clone to nil")
	}
}

func TestRefs(t *testing.T) {
	a := Album{
		{ID: "m1", Media: []MediaItem{{URL: "u1"}, {URL: "u2"}}},
		{ID: "m2", Media: []MediaItem{{URL: "u2"}}},
	}
	refs := a.Refs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	for _, u := range []string{"u1", "u2"} {
		if _, ok := refs[u]; !ok {
			t.Errorf("missing ref %q", u)
		}
	}
}

func TestMemoryJSONFieldNames(t *testing.T) {
	m := Memory{ID: "m1", Title: "Beach", Category: CategoryPets, CreatedAt: 1700000000000,
		Media: []MediaItem{{ID: "i1", Kind: KindImage, URL: "u", Name: "a.png", Size: 3, Type: "image/png"}}}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"m1","title":"Beach","category":"pets","createdAt":1700000000000,` +
		`"media":[{"id":"i1","kind":"image","url":"u","name":"a.png","size":3,"type":"image/png"}]}`
	if string(b) != want {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", b, want)
	}
	if m.Created().UnixMilli() != m.CreatedAt {
		t.Fatal("Created does not round trip CreatedAt")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 26 || seen[id] {
			t.Fatalf("bad or duplicate id %q", id)
		}
		seen[id] = true
	}
}
