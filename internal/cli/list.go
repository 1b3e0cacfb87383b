package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/album"
	"github.com/fondmemory/fond-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Run:   runList,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 0, "Keep only the N most recently added memories (0 for all)")
	cmd.Flags().Bool("ids-only", false, "Only output memory ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	memories := album.Filter(a.album.Memories(), "", model.Category(category))
	memories = mostRecent(memories, limit)

	if idsOnly {
		for _, m := range memories {
			fmt.Fprintln(cmd.OutOrStdout(), m.ID)
		}
		return
	}
	printMemories(memories)
}

// mostRecent keeps the last n memories of a, in album order. n <= 0 keeps
// everything.
func mostRecent(a model.Album, n int) model.Album {
	if n <= 0 || len(a) <= n {
		return a
	}
	return a[len(a)-n:]
}
