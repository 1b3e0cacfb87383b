package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fondmemory/fond-memory/internal/model"
)

var memoryColumns = []column{
	textCol("ID"), textCol("Title"), textCol("Category"), textCol("Created"), textCol("Media"), numCol("Size"),
}

var mediaColumns = []column{
	numCol("#"), textCol("ID"), textCol("Kind"), textCol("Name"), textCol("Type"), numCol("Size"),
}

func mediaBytes(m model.Memory) int64 {
	var n int64
	for _, it := range m.Media {
		n += it.Size
	}
	return n
}

func kindSummary(items []model.MediaItem) string {
	counts := map[model.Kind]int{}
	for _, it := range items {
		counts[it.Kind]++
	}
	var parts []string
	for _, k := range []model.Kind{model.KindImage, model.KindVideo, model.KindAudio} {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return strings.Join(parts, ", ")
}

// printMemories writes a as JSON, or as a table in text mode. Memories are
// shown newest first in text mode; JSON keeps insertion order.
func printMemories(a model.Album) {
	if !textOutput() {
		printJSON(a)
		return
	}
	if len(a) == 0 {
		fmt.Println("No memories.")
		return
	}
	rows := make([][]string, 0, len(a))
	for i := len(a) - 1; i >= 0; i-- {
		m := a[i]
		rows = append(rows, []string{
			m.ID,
			m.Title,
			m.Category.Label(),
			humanize.Time(m.Created()),
			kindSummary(m.Media),
			humanize.Bytes(uint64(mediaBytes(m))),
		})
	}
	fmt.Println(renderTable(memoryColumns, rows))
}

func printMemory(m model.Memory) {
	if !textOutput() {
		printJSON(m)
		return
	}
	fmt.Printf("%s\n%s · %s (%s)\n\n", m.Title, m.Category.Label(),
		m.Created().Format("2006-01-02 15:04"), humanize.Time(m.Created()))
	rows := make([][]string, 0, len(m.Media))
	for i, it := range m.Media {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.ID,
			string(it.Kind),
			it.Name,
			it.Type,
			humanize.Bytes(uint64(it.Size)),
		})
	}
	fmt.Println(renderTable(mediaColumns, rows))
}
