package cli

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/fondmemory/fond-memory/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		Run:   runConfigInit,
	}
	initCmd.Flags().Bool("overwrite", false, "Overwrite existing configuration if present")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Run:   runConfigShow,
	}

	configCmd.AddCommand(initCmd, showCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	target := configPath
	var err error
	if target == "" {
		target, err = config.DefaultConfigPath()
	} else {
		target, err = config.ExpandPath(target)
	}
	if err != nil {
		exitErr("resolve config path", err)
	}

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			exitErr("config init", fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target))
		} else if !os.IsNotExist(err) {
			exitErr("check config path", err)
		}
	}

	if err := config.CreateSample(target); err != nil {
		exitErr("config init", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q}`+"\n", target)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if !textOutput() {
		printJSON(cfg)
		return
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		exitErr("encode config", err)
	}
	fmt.Print(string(b))
}
