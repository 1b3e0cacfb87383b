package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/album"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their memory counts",
		Run:   runCategories,
	}

	RootCmd.AddCommand(cmd)
}

func runCategories(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	rows := album.Summarize(a.album.Memories()).Categories
	if !textOutput() {
		printJSON(rows)
		return
	}

	table := make([][]string, 0, len(rows))
	for _, c := range rows {
		table = append(table, []string{string(c.Category), c.Label, strconv.Itoa(c.Memories), strconv.Itoa(c.Media)})
	}
	fmt.Println(renderTable(
		[]column{textCol("Category"), textCol("Label"), numCol("Memories"), numCol("Media")},
		table,
	))
}
