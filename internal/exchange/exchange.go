// Package exchange converts an album to and from its portable JSON export.
//
// Version 1 documents are an envelope carrying the memories plus, optionally,
// the media payloads keyed by url. Bare JSON arrays of memories are the
// original unversioned format and are still accepted on import; they carry
// no payloads, so their media urls are usually transient.
package exchange

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fondmemory/fond-memory/internal/media"
	"github.com/fondmemory/fond-memory/internal/model"
)

// CurrentVersion is the envelope version written by Export.
const CurrentVersion = 1

// LegacyVersion identifies a bare-array document.
const LegacyVersion = 0

// DefaultFileName is the suggested export file name.
const DefaultFileName = "fond-memory.json"

// ImportParseError reports a malformed import document. Nothing is applied
// when it is returned.
type ImportParseError struct {
	Err error
}

func (e *ImportParseError) Error() string {
	return fmt.Sprintf("parse import: %v", e.Err)
}

func (e *ImportParseError) Unwrap() error { return e.Err }

// Document is a parsed export.
type Document struct {
	Version    int
	ExportedAt time.Time
	Memories   model.Album
	// Payloads maps persistent media urls to their bytes.
	Payloads map[string][]byte
}

type envelope struct {
	Version    *int              `json:"version"`
	ExportedAt int64             `json:"exportedAt,omitempty"`
	Memories   *model.Album      `json:"memories"`
	Payloads   map[string][]byte `json:"payloads,omitempty"`
}

// Export encodes album as a version 1 document. payloads may be nil, in
// which case only metadata and urls are written.
func Export(album model.Album, payloads map[string][]byte, now time.Time) ([]byte, error) {
	if album == nil {
		album = model.Album{}
	}
	version := CurrentVersion
	env := envelope{
		Version:    &version,
		ExportedAt: now.UnixMilli(),
		Memories:   &album,
	}
	if len(payloads) > 0 {
		env.Payloads = payloads
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(b, '\n'), nil
}

// Import parses an export document. Any structural problem yields an
// *ImportParseError.
func Import(data []byte) (*Document, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, &ImportParseError{Err: err}
	}
	if err := check(doc); err != nil {
		return nil, &ImportParseError{Err: err}
	}
	return doc, nil
}

func parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	switch trimmed[0] {
	case '[':
		var album model.Album
		if err := decodeStrict(trimmed, &album); err != nil {
			return nil, err
		}
		return &Document{Version: LegacyVersion, Memories: album}, nil

	case '{':
		var env envelope
		if err := decodeStrict(trimmed, &env); err != nil {
			return nil, err
		}
		if env.Version == nil {
			return nil, errors.New("missing version")
		}
		if *env.Version != CurrentVersion {
			return nil, fmt.Errorf("unsupported version %d", *env.Version)
		}
		if env.Memories == nil {
			return nil, errors.New("missing memories")
		}
		doc := &Document{
			Version:  *env.Version,
			Memories: *env.Memories,
			Payloads: env.Payloads,
		}
		if env.ExportedAt != 0 {
			doc.ExportedAt = time.UnixMilli(env.ExportedAt)
		}
		return doc, nil

	default:
		return nil, errors.New("document must be a JSON array or an export envelope")
	}
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after document")
	}
	return nil
}

func check(doc *Document) error {
	if doc.Memories == nil {
		return errors.New("memories must be an array")
	}
	seen := make(map[string]bool, len(doc.Memories))
	for i, m := range doc.Memories {
		if m.ID == "" {
			return fmt.Errorf("memory %d: missing id", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("memory %d: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true
		if !m.Category.Valid() {
			return fmt.Errorf("memory %q: unknown category %q", m.ID, m.Category)
		}
		if m.Media == nil {
			return fmt.Errorf("memory %q: media must be an array", m.ID)
		}
		for j, it := range m.Media {
			if it.ID == "" {
				return fmt.Errorf("memory %q media %d: missing id", m.ID, j)
			}
			if !it.Kind.Valid() {
				return fmt.Errorf("memory %q media %d: unknown kind %q", m.ID, j, it.Kind)
			}
		}
	}

	for url, data := range doc.Payloads {
		digest, err := media.ParseRef(url).Digest()
		if err != nil {
			return fmt.Errorf("payload key: %w", err)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != digest {
			return fmt.Errorf("payload %q does not match its digest", url)
		}
	}
	return nil
}
