package album

import "github.com/fondmemory/fond-memory/internal/model"

// Stats summarizes an album.
type Stats struct {
	Memories   int             `json:"memories"`
	Media      int             `json:"media"`
	MediaBytes int64           `json:"media_bytes"`
	Categories []CategoryStats `json:"categories"`
	Kinds      map[string]int  `json:"kinds"`
}

// CategoryStats holds per-category counts.
type CategoryStats struct {
	Category model.Category `json:"category"`
	Label    string         `json:"label"`
	Memories int            `json:"memories"`
	Media    int            `json:"media"`
}

// Summarize counts memories and media per category and kind. Categories
// appear in display order, followed by any unknown ones found in a.
func Summarize(a model.Album) Stats {
	st := Stats{Kinds: map[string]int{}}
	idx := map[model.Category]int{}
	for _, c := range model.Categories {
		idx[c] = len(st.Categories)
		st.Categories = append(st.Categories, CategoryStats{Category: c, Label: c.Label()})
	}

	for _, m := range a {
		i, ok := idx[m.Category]
		if !ok {
			i = len(st.Categories)
			idx[m.Category] = i
			st.Categories = append(st.Categories, CategoryStats{Category: m.Category, Label: m.Category.Label()})
		}
		st.Memories++
		st.Categories[i].Memories++
		st.Categories[i].Media += len(m.Media)
		for _, it := range m.Media {
			st.Media++
			st.MediaBytes += it.Size
			st.Kinds[string(it.Kind)]++
		}
	}
	return st
}
