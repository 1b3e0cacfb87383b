package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/album"
	"github.com/fondmemory/fond-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show album and database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

type statsOutput struct {
	Album   album.Stats  `json:"album"`
	Storage *store.Stats `json:"storage"`
}

func runStats(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	dbStats, err := a.db.Stats(cmd.Context(), a.cfg.Storage.DBPath)
	if err != nil {
		exitErr("stats", err)
	}
	out := statsOutput{Album: album.Summarize(a.album.Memories()), Storage: dbStats}

	if !textOutput() {
		printJSON(out)
		return
	}

	rows := [][]string{
		{"Memories", strconv.Itoa(out.Album.Memories)},
		{"Media items", strconv.Itoa(out.Album.Media)},
		{"Media size", humanize.Bytes(uint64(out.Album.MediaBytes))},
	}
	kinds := make([]string, 0, len(out.Album.Kinds))
	for k := range out.Album.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		rows = append(rows, []string{"  " + k, strconv.Itoa(out.Album.Kinds[k])})
	}
	rows = append(rows,
		[]string{"Stored blobs", humanize.Comma(int64(dbStats.Blobs))},
		[]string{"Blob size", humanize.Bytes(uint64(dbStats.BlobBytes))},
		[]string{"Database", dbStats.DBPath},
		[]string{"Database size", humanize.Bytes(uint64(dbStats.DBSizeBytes))},
	)
	fmt.Println(renderTable([]column{textCol("Metric"), numCol("Value")}, rows))
}
