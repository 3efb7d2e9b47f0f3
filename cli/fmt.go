package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"passfmt/internal/cache"
	"passfmt/internal/config"
	"passfmt/internal/diag"
	"passfmt/internal/diagfmt"
	"passfmt/internal/driver"
	"passfmt/internal/source"
)

func (a *app) newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format source files in place",
		Long: `Format files and directories (recursively) in place. With no paths the
current directory is formatted; "-" reads stdin and writes stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFormat(cmd, args, false)
		},
	}
	cmd.Flags().Bool("check", false, "report files that would change instead of rewriting them")
	cmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	cmd.Flags().Bool("diff", false, "print a unified diff for every changed file")
	addEngineFlags(cmd)
	return cmd
}

func (a *app) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Report files that are not formatted",
		Long:  `Same as "fmt --check --diff": nothing is written, changed files make the exit status 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFormat(cmd, args, true)
		},
	}
	cmd.Flags().Bool("diff", true, "print a unified diff for every changed file")
	addEngineFlags(cmd)
	return cmd
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "output format (text|short|json)")
	cmd.Flags().Int("jobs", 0, "files formatted in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("strict", false, "abort a file on the first edit conflict")
	cmd.Flags().Int("max-rounds", 0, "round limit per file (0 = config value)")
	cmd.Flags().String("lang", "", "language for every input (required for stdin)")
	cmd.Flags().Bool("no-cache", false, "neither read nor write the result cache")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().String("paths", "auto", "how reports show file paths (auto|absolute|relative|basename)")
}

// formatRequest is the parsed command line of fmt and check.
type formatRequest struct {
	check, stdout, diff bool
	format              string
	jobs, maxRounds     int
	strict              bool
	lang                string
	noCache             bool
	ui                  uiMode
	paths               diagfmt.PathMode

	configPath     string
	quiet, timings bool
	maxDiagnostics int
}

func readFormatRequest(cmd *cobra.Command, checkOnly bool) (*formatRequest, error) {
	var (
		req  = &formatRequest{check: checkOnly}
		errs []error
	)
	getBool := func(fs interface{ GetBool(string) (bool, error) }, name string, dst *bool) {
		v, err := fs.GetBool(name)
		errs = append(errs, err)
		*dst = *dst || v
	}
	local, global := cmd.Flags(), cmd.Root().PersistentFlags()
	if !checkOnly {
		getBool(local, "check", &req.check)
		getBool(local, "stdout", &req.stdout)
	}
	getBool(local, "diff", &req.diff)
	getBool(local, "strict", &req.strict)
	getBool(local, "no-cache", &req.noCache)
	getBool(global, "quiet", &req.quiet)
	getBool(global, "timings", &req.timings)

	var err error
	req.format, err = local.GetString("format")
	errs = append(errs, err)
	req.lang, err = local.GetString("lang")
	errs = append(errs, err)
	req.jobs, err = local.GetInt("jobs")
	errs = append(errs, err)
	req.maxRounds, err = local.GetInt("max-rounds")
	errs = append(errs, err)
	req.configPath, err = global.GetString("config")
	errs = append(errs, err)
	req.maxDiagnostics, err = global.GetInt("max-diagnostics")
	errs = append(errs, err)
	uiValue, err := local.GetString("ui")
	errs = append(errs, err)
	pathsValue, err := local.GetString("paths")
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if req.ui, err = readUIMode("ui", uiValue); err != nil {
		return nil, err
	}
	if req.paths, err = diagfmt.ParsePathMode(pathsValue); err != nil {
		return nil, fmt.Errorf("--paths: %w", err)
	}

	switch {
	case req.format != "text" && req.format != "short" && req.format != "json":
		return nil, fmt.Errorf("unsupported output format %q (expected text|short|json)", req.format)
	case req.stdout && req.check:
		return nil, errors.New("--stdout cannot be used with --check")
	case req.stdout && req.format == "json":
		return nil, errors.New("--stdout is not supported with json output")
	case req.maxRounds < 0:
		return nil, errors.New("--max-rounds must not be negative")
	}
	return req, nil
}

func (a *app) runFormat(cmd *cobra.Command, args []string, checkOnly bool) error {
	req, err := readFormatRequest(cmd, checkOnly)
	if err != nil {
		return err
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, warnings, err := config.Load(req.configPath)
	if err != nil {
		return err
	}
	if len(warnings) > 0 && !req.quiet {
		diagfmt.Pretty(stderr, cfg.Path, "", warnings, diagfmt.PrettyOpts{Color: useColor(cmd, stderr)})
	}
	if cmd.Flags().Changed("strict") {
		cfg.Engine.Strict = req.strict
	}
	if req.maxRounds > 0 {
		cfg.Engine.MaxRounds = req.maxRounds
	}

	opts := driver.Options{
		Config:   cfg,
		Registry: a.registry,
		Passes:   a.passes,
		Language: req.lang,
		Check:    req.check,
		Stdout:   req.stdout,
		Diff:     req.diff,
		Jobs:     req.jobs,
		Timings:  req.timings,
	}
	if cfg.Cache.Enabled && !req.noCache {
		c, err := cache.Open(cfg.Cache.Dir)
		if err != nil {
			if !req.quiet {
				fmt.Fprintf(stderr, "%s: cache disabled: %v\n", a.name, err)
			}
		} else {
			opts.Cache = c
		}
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	var results []driver.FileResult
	if slices.Contains(args, "-") {
		if len(args) != 1 {
			return errors.New(`"-" (stdin) cannot be combined with other paths`)
		}
		if req.lang == "" {
			return errors.New("--lang is required when reading stdin")
		}
		opts.Stdout = !req.check
		results, err = formatStdin(cmd.Context(), cmd.InOrStdin(), opts)
	} else {
		results, err = formatFiles(cmd, args, opts, req)
	}
	if err != nil {
		return err
	}

	if req.format == "json" {
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			IncludeDiff:      req.diff,
			IncludeTimings:   req.timings,
			Max:              req.maxDiagnostics,
			PathMode:         req.paths,
		}
		if err := diagfmt.JSON(stdout, results, jsonOpts); err != nil {
			return err
		}
	} else {
		a.renderText(cmd, results, req, opts.Stdout)
	}
	return exitStatus(results, req.check)
}

func formatStdin(ctx context.Context, in io.Reader, opts driver.Options) ([]driver.FileResult, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	f, err := driver.NewFormatter(opts)
	if err != nil {
		return nil, err
	}
	res := f.Format(ctx, source.FromBytes("-", data, source.FileVirtual))
	return []driver.FileResult{res}, nil
}

func formatFiles(cmd *cobra.Command, paths []string, opts driver.Options, req *formatRequest) ([]driver.FileResult, error) {
	f, err := driver.NewFormatter(opts)
	if err != nil {
		return nil, err
	}
	files, err := f.Collect(cmd.Context(), paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, driver.ErrNoFiles
	}
	if req.format == "text" && !req.stdout && enabled(req.ui, cmd.OutOrStdout()) {
		title := "formatting"
		if req.check {
			title = "checking"
		}
		return runFormatWithUI(cmd.Context(), title, f, files, cmd.OutOrStdout())
	}
	return f.FormatFiles(cmd.Context(), files)
}

func (a *app) renderText(cmd *cobra.Command, results []driver.FileResult, req *formatRequest, toStdout bool) {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	pretty := diagfmt.PrettyOpts{
		Color:     useColor(cmd, stderr),
		ShowNotes: true,
		Max:       req.maxDiagnostics,
		PathMode:  req.paths,
	}
	for i := range results {
		res := &results[i]
		diags := res.Diagnostics
		if req.quiet {
			diags = atLeast(diags, diag.SevWarning)
		}
		if req.format == "short" {
			// одна строка на диагностику, без сниппетов
			shown := diagfmt.DisplayPath(res.Path, req.paths, "")
			if s := diag.FormatShort(shown, res.Original, diags, true); s != "" {
				fmt.Fprintln(stderr, s)
			}
		} else {
			diagfmt.Pretty(stderr, res.Path, res.Original, diags, pretty)
		}
		if res.Err != nil && len(diags) == 0 {
			fmt.Fprintf(stderr, "%s: %s: %v\n", a.name, res.Path, res.Err)
		}
		if req.timings && res.Timings != nil {
			printTimings(stderr, res.Path, res.Timings)
		}
		if res.Err != nil {
			continue
		}

		switch {
		case toStdout:
			_, _ = stdout.Write(res.Formatted)
		case req.check:
			if res.Changed && !req.quiet {
				fmt.Fprintln(stdout, res.Path)
			}
		case res.Written && !req.quiet:
			fmt.Fprintf(stdout, "reformatted %s\n", res.Path)
		}
		if res.Diff != "" && !toStdout {
			fmt.Fprint(stdout, res.Diff)
		}
	}
}

func atLeast(diags []diag.Diagnostic, sev diag.Severity) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range diags {
		if d.Severity >= sev {
			out = append(out, d)
		}
	}
	return out
}

// exitStatus maps results to the command error: failures first, then
// pending changes in check mode.
func exitStatus(results []driver.FileResult, check bool) error {
	failed, changed := 0, 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
		if results[i].Changed {
			changed++
		}
	}
	switch {
	case failed > 0:
		return fmt.Errorf("%w: %d file(s) failed", errReported, failed)
	case check && changed > 0:
		return fmt.Errorf("%w: %d file(s) need formatting", errReported, changed)
	}
	return nil
}
