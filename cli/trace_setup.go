package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"passfmt/internal/trace"
)

// readTraceFlags turns the --trace* persistent flags into a tracer config.
func readTraceFlags(cmd *cobra.Command) (trace.Config, error) {
	flags := cmd.Root().PersistentFlags()
	output, err1 := flags.GetString("trace")
	levelName, err2 := flags.GetString("trace-level")
	modeName, err3 := flags.GetString("trace-mode")
	ringSize, err4 := flags.GetInt("trace-ring-size")
	heartbeat, err5 := flags.GetDuration("trace-heartbeat")
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return trace.Config{}, err
	}

	level, err := trace.ParseLevel(levelName)
	if err != nil {
		return trace.Config{}, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	mode, err := trace.ParseMode(modeName)
	if err != nil {
		return trace.Config{}, err
	}
	if output == "" {
		output = "-"
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: output,
		RingSize:   ringSize,
		Heartbeat:  heartbeat,
	}, nil
}

// setupTracing builds the tracer the --trace* flags ask for and stores it in
// the command context. The returned cleanup stops the heartbeat, dumps a ring
// and closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Level == trace.LevelOff {
		return func() {}, nil
	}
	stderr := cmd.ErrOrStderr()
	if cfg.OutputPath == "-" {
		cfg.Output = stderr
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	heartbeat := trace.StartHeartbeat(tracer, cfg.Heartbeat)

	return func() {
		heartbeat.Stop()
		// в режиме both поток уже всё записал
		if cfg.Mode == trace.ModeRing {
			traceErr(stderr, "dump", trace.RingOf(tracer).Dump(stderr, trace.FormatText))
		}
		traceErr(stderr, "flush", tracer.Flush())
		traceErr(stderr, "close", tracer.Close())
	}, nil
}

func traceErr(w io.Writer, what string, err error) {
	if err != nil {
		fmt.Fprintf(w, "trace: %s error: %v\n", what, err)
	}
}
