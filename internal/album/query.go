package album

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/fondmemory/fond-memory/internal/model"
)

// Filter returns the memories whose title contains query (case-insensitive)
// and whose category equals category. Empty arguments match everything.
// The source order is kept and a is not modified.
func Filter(a model.Album, query string, category model.Category) model.Album {
	fold := cases.Fold()
	q := fold.String(query)

	out := make(model.Album, 0, len(a))
	for _, m := range a {
		if q != "" && !strings.Contains(fold.String(m.Title), q) {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, m)
	}
	return out
}
