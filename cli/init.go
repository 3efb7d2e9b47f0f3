package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"passfmt/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Long: `Write passfmt.toml (or the file named by [path]) with every setting at its
default. A directory argument gets passfmt.toml inside it; the extension picks
TOML or YAML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("yaml", false, "write passfmt.yaml instead of passfmt.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	useYAML, err := cmd.Flags().GetBool("yaml")
	if err != nil {
		return err
	}
	name := config.FileNames[0]
	if useYAML {
		name = "passfmt.yaml"
	}

	target := name
	if len(args) == 1 {
		target = args[0]
		if st, err := os.Stat(target); err == nil && st.IsDir() {
			target = filepath.Join(target, name)
		}
	}

	if err := config.WriteDefault(target); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%s already exists", target)
		}
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", target)
	}
	return nil
}
