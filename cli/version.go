package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"passfmt/internal/version"
)

// versionPayload is the --format json shape: build stamps plus what this
// binary can format, so bug reports carry the grammar and pass set.
type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	GitCommit string   `json:"git_commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
	Languages []string `json:"languages"`
	Passes    []string `json:"passes"`
}

func (a *app) currentVersion() versionPayload {
	return versionPayload{
		Tool:      a.name,
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
		Languages: a.languages().Names(),
		Passes:    a.passNames,
	}
}

func (a *app) newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "pretty":
				v := a.currentVersion()
				fmt.Fprintln(out, version.Describe())
				fmt.Fprintf(out, "languages: %s\npasses:    %s\n", strings.Join(v.Languages, ", "), strings.Join(v.Passes, ", "))
				return nil
			case "short":
				fmt.Fprintln(out, version.Version)
				return nil
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(a.currentVersion())
			}
			return fmt.Errorf("unsupported format %q (must be pretty, short or json)", format)
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	return cmd
}
