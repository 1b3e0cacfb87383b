package media

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTransientRef is returned when a media url does not point into the blob
// store. Such references were only valid inside the session that created
// them and cannot be played after a reload.
var ErrTransientRef = errors.New("transient media reference")

const blobScheme = "blob:sha256:"

// Ref is a parsed playable reference.
type Ref struct {
	raw    string
	digest string
}

// BlobRef returns the persistent reference for a blob digest.
func BlobRef(digest string) Ref {
	return Ref{raw: blobScheme + digest, digest: digest}
}

// ParseRef parses a media url. Urls outside the blob store parse as
// transient refs.
func ParseRef(url string) Ref {
	if d, ok := strings.CutPrefix(url, blobScheme); ok && isHexDigest(d) {
		return Ref{raw: url, digest: d}
	}
	return Ref{raw: url}
}

// Persistent reports whether the ref survives a process restart.
func (r Ref) Persistent() bool { return r.digest != "" }

// Digest returns the blob digest, or ErrTransientRef.
func (r Ref) Digest() (string, error) {
	if !r.Persistent() {
		return "", fmt.Errorf("%w: %q", ErrTransientRef, r.raw)
	}
	return r.digest, nil
}

func (r Ref) String() string { return r.raw }

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
