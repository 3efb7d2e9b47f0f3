package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// uiMode is the auto|on|off switch behind --ui and --color.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = []uiMode{uiModeAuto, uiModeOn, uiModeOff}

func readUIMode(flag, value string) (uiMode, error) {
	m := uiMode(strings.ToLower(strings.TrimSpace(value)))
	if m == "" {
		return uiModeAuto, nil
	}
	if !slices.Contains(uiModes, m) {
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
	return m, nil
}

// enabled resolves auto against w: a terminal that is not TERM=dumb.
func enabled(mode uiMode, w io.Writer) bool {
	if mode != uiModeAuto {
		return mode == uiModeOn
	}
	return isTerminal(w) && os.Getenv("TERM") != "dumb"
}

func colorFlag(cmd *cobra.Command) (uiMode, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return "", err
	}
	return readUIMode("color", value)
}

// applyColorMode forces fatih/color on or off; auto leaves its NO_COLOR and
// terminal detection in charge.
func applyColorMode(cmd *cobra.Command) error {
	mode, err := colorFlag(cmd)
	if err != nil {
		return err
	}
	if mode != uiModeAuto {
		color.NoColor = mode == uiModeOff
	}
	return nil
}

func useColor(cmd *cobra.Command, w io.Writer) bool {
	mode, err := colorFlag(cmd)
	switch {
	case err != nil:
		return false
	case mode == uiModeAuto:
		return !color.NoColor && isTerminal(w)
	}
	return mode == uiModeOn
}
