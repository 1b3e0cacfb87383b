package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/media"
	"github.com/fondmemory/fond-memory/internal/model"
)

func init() {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Access the media attached to memories",
	}

	catCmd := &cobra.Command{
		Use:   "cat <memory-id> <media-id|#>",
		Short: "Write a media payload to stdout or a file",
		Args:  cobra.ExactArgs(2),
		Run:   runMediaCat,
	}
	catCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	mediaCmd.AddCommand(catCmd)
	RootCmd.AddCommand(mediaCmd)
}

// findItem resolves ref as a media id or a 1-based position.
func findItem(m model.Memory, ref string) (model.MediaItem, bool) {
	for _, it := range m.Media {
		if it.ID == ref {
			return it, true
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(m.Media) {
		return m.Media[n-1], true
	}
	return model.MediaItem{}, false
}

func runMediaCat(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	m, ok := a.album.Get(args[0])
	if !ok {
		exitErr("media cat", fmt.Errorf("memory %q not found", args[0]))
	}
	item, ok := findItem(m, args[1])
	if !ok {
		exitErr("media cat", fmt.Errorf("memory %q has no media %q", m.ID, args[1]))
	}

	blob, err := a.library.Open(cmd.Context(), item)
	if errors.Is(err, media.ErrTransientRef) {
		exitErr("media cat", fmt.Errorf("%s was imported without its payload: %w", item.Name, err))
	}
	if err != nil {
		exitErr("media cat", err)
	}

	if output == "" || output == "-" {
		if _, err := cmd.OutOrStdout().Write(blob.Data); err != nil {
			exitErr("write media", err)
		}
		return
	}
	if err := os.WriteFile(output, blob.Data, 0o644); err != nil {
		exitErr("write media", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q,"bytes":%d}`+"\n", output, len(blob.Data))
}
