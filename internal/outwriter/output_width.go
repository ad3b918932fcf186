package outwriter

import (
	"os"

	"github.com/huangsam/mlscore/internal/contract"
	"golang.org/x/term"
)

// Table width bounds of the name column.
const (
	fallbackTermWidth = 80 // narrow terminals and CI
	minNameWidth      = 12
	maxNameWidth      = 48
)

// terminalWidth returns the configured width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return fallbackTermWidth
	}
	return detected
}

// GetMaxTableNameWidth calculates how wide the artifact name column may be
// once fixedColumns characters are reserved for the other columns.
func GetMaxTableNameWidth(cfg *contract.Config, fixedColumns int) int {
	// borders, separators and padding
	available := terminalWidth(cfg) - fixedColumns - 10
	return max(minNameWidth, min(maxNameWidth, available))
}
