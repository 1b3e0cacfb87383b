package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/exchange"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the album as JSON",
		Long: "Export every memory as a versioned JSON document. Media bytes are embedded " +
			"unless --no-media is given or export.embed_media is false.",
		Run: runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout (e.g. "+exchange.DefaultFileName+")")
	cmd.Flags().Bool("no-media", false, "Only export metadata and media urls")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	noMedia, _ := cmd.Flags().GetBool("no-media")

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	memories := a.album.Memories()
	var payloads map[string][]byte
	if a.cfg.Export.EmbedMedia && !noMedia {
		payloads, err = a.library.Payloads(cmd.Context(), memories)
		if err != nil {
			exitErr("export media", err)
		}
	}

	data, err := exchange.Export(memories, payloads, time.Now())
	if err != nil {
		exitErr("export", err)
	}

	if output == "" || output == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			exitErr("write export", err)
		}
		return
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		exitErr("write export", err)
	}
	printJSON(map[string]any{
		"ok":       true,
		"path":     output,
		"memories": len(memories),
		"payloads": len(payloads),
	})
}
