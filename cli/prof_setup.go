package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"passfmt/internal/prof"
)

// setupProfiling starts the requested runtime profiles and returns the
// function that stops them.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	var opts prof.Options
	var err error
	if opts.CPU, err = cmd.Flags().GetString("cpuprofile"); err != nil {
		return nil, err
	}
	if opts.Mem, err = cmd.Flags().GetString("memprofile"); err != nil {
		return nil, err
	}
	if opts.Trace, err = cmd.Flags().GetString("runtime-trace"); err != nil {
		return nil, err
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: profiling: %v\n", cmd.Root().Name(), err)
		}
	}, nil
}
