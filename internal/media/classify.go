// Package media turns raw inputs into normalized MediaItem records backed by
// the content-addressed blob store.
package media

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fondmemory/fond-memory/internal/model"
)

// Classify derives the media kind from a declared content type. Anything
// that is not image/* or video/* is audio, including empty and unknown types.
func Classify(contentType string) model.Kind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.KindImage
	case strings.HasPrefix(contentType, "video/"):
		return model.KindVideo
	default:
		return model.KindAudio
	}
}

// Allowed reports whether contentType passes the picker filter
// (image/*, video/*, audio/*).
func Allowed(contentType string) bool {
	for _, p := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(contentType, p) {
			return true
		}
	}
	return false
}

// DetectType resolves the content type of a named payload: the file
// extension first, then content sniffing.
func DetectType(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return stripParams(t)
		}
	}
	return stripParams(mimetype.Detect(data).String())
}

func stripParams(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
