package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/album"
	"github.com/fondmemory/fond-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by title",
		Long:  "Case-insensitive substring search over titles, optionally restricted to one category.",
		Run:   runSearch,
	}

	cmd.Flags().StringP("category", "c", "", "Restrict to a category")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	query := strings.Join(args, " ")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	printMemories(album.Filter(a.album.Memories(), query, model.Category(category)))
}
