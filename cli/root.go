package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"passfmt/internal/version"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("reported")

func (a *app) newRootCmd(cleanup *func()) *cobra.Command {
	root := &cobra.Command{
		Use:   a.name,
		Short: a.short,
		Long: a.name + ` runs a pipeline of small formatting passes over tree-sitter
syntax trees until the text stops changing.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyColorMode(cmd); err != nil {
				return err
			}
			done, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			stopProf, err := setupProfiling(cmd)
			if err != nil {
				done()
				return err
			}
			*cleanup = func() {
				stopProf()
				done()
			}
			return nil
		},
	}

	// Глобальные флаги
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default: discovered from the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show per file")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	flags.String("cpuprofile", "", "write CPU profile to file")
	flags.String("memprofile", "", "write heap profile to file")
	flags.String("runtime-trace", "", "write Go runtime trace to file")

	root.AddCommand(a.newFmtCmd(), a.newCheckCmd(), newInitCmd(), a.newLanguagesCmd(), newCacheCmd(), a.newVersionCmd())
	return root
}

// run executes the CLI and returns the process exit code.
func (a *app) run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cleanup := func() {}
	root := a.newRootCmd(&cleanup)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	cleanup()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "%s: %v\n", a.name, err)
	}
	return 1
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
