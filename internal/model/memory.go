// Package model defines the core album data types.
package model

import "time"

// Kind classifies a media attachment.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Valid reports whether k is one of the known media kinds.
func (k Kind) Valid() bool {
	return ValidKinds[k]
}

// ValidKinds are the allowed media kinds.
var ValidKinds = map[Kind]bool{
	KindImage: true,
	KindVideo: true,
	KindAudio: true,
}

// Category groups memories by who they are about.
type Category string

const (
	CategoryFamily Category = "family"
	CategoryCouple Category = "couple"
	CategoryPets   Category = "pets"
	CategoryLegacy Category = "legacy"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFamily, CategoryCouple, CategoryPets, CategoryLegacy}

var categoryLabels = map[Category]string{
	CategoryFamily: "Família",
	CategoryCouple: "Casal",
	CategoryPets:   "Pets",
	CategoryLegacy: "Entes queridos",
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label, or the raw value for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// MediaItem is one playable attachment. Items are immutable once created.
type MediaItem struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Memory is one album entry. It exclusively owns its media.
type Memory struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Category  Category    `json:"category"`
	CreatedAt int64       `json:"createdAt"` // unix milliseconds
	Media     []MediaItem `json:"media"`
}

// Created returns CreatedAt as a time.
func (m Memory) Created() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// Clone returns a deep copy of m.
func (m Memory) Clone() Memory {
	c := m
	if m.Media != nil {
		c.Media = make([]MediaItem, len(m.Media))
		copy(c.Media, m.Media)
	}
	return c
}

// Album is the ordered collection of memories, oldest first.
type Album []Memory

// Clone returns a deep copy of a.
func (a Album) Clone() Album {
	if a == nil {
		return nil
	}
	out := make(Album, len(a))
	for i, m := range a {
		out[i] = m.Clone()
	}
	return out
}

// Refs returns every media url referenced by the album.
func (a Album) Refs() map[string]struct{} {
	refs := make(map[string]struct{})
	for _, m := range a {
		for _, it := range m.Media {
			refs[it.URL] = struct{}{}
		}
	}
	return refs
}
