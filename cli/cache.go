package cli

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"passfmt/internal/cache"
	"passfmt/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clean the result cache",
		Args:  cobra.NoArgs,
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Show where the cache lives and what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			st, err := c.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dir:     %s\n", c.Dir())
			fmt.Fprintf(out, "entries: %d (%d stale, %d bytes)\n", st.Entries, st.Stale, st.Bytes)
			if !st.Oldest.IsZero() {
				fmt.Fprintf(out, "oldest:  %s\n", st.Oldest.Format(time.DateTime))
			}
			langs := make([]string, 0, len(st.ByLanguage))
			for l := range st.ByLanguage {
				langs = append(langs, l)
			}
			slices.Sort(langs)
			for _, l := range langs {
				fmt.Fprintf(out, "  %-10s %d\n", l, st.ByLanguage[l])
			}
			return nil
		},
	}

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Delete every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", c.Dir())
			return nil
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete stale entries and entries older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := cmd.Flags().GetDuration("older-than")
			if err != nil {
				return err
			}
			if age < 0 {
				return errors.New("--older-than must not be negative")
			}
			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			var cutoff time.Time
			if age > 0 {
				cutoff = time.Now().Add(-age)
			}
			n, err := c.Prune(cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entr%s\n", n, plural(n, "y", "ies"))
			return nil
		},
	}
	prune.Flags().Duration("older-than", 30*24*time.Hour, "age limit (0 = only stale entries)")

	cmd.AddCommand(info, clean, prune)
	return cmd
}

// openCache honours cache.dir from the config; the cache.enabled switch only
// applies to formatting.
func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cache.Open(cfg.Cache.Dir)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
