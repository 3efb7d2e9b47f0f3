package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"passfmt/internal/config"
)

func (a *app) newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the recognised languages and file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, _, err := config.Load(path)
			if err != nil {
				return err
			}
			registry, err := a.languages().WithExtensions(cfg.Languages)
			if err != nil {
				return fmt.Errorf("languages: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, name := range registry.Names() {
				fmt.Fprintf(out, "%-12s %s\n", name, strings.Join(registry.Extensions(name), " "))
			}
			return nil
		},
	}
}
