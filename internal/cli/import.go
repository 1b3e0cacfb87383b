package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/exchange"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the album from an export",
		Long: "Replace the whole album with the memories in an export (file or stdin). " +
			"A malformed document is rejected and the album is left as it was.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read import", err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open album", err)
	}
	defer a.Close()

	doc, err := exchange.Apply(cmd.Context(), data, a.album, a.library)
	if err != nil {
		exitErr("import", err)
	}

	printJSON(map[string]any{
		"ok":       true,
		"version":  doc.Version,
		"imported": len(doc.Memories),
		"payloads": len(doc.Payloads),
	})
}
