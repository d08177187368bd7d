package progress

import (
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/umputun/logincheck/pkg/config"
)

// Colors holds the console palette built from config.
type Colors struct {
	pass      *color.Color
	fail      *color.Color
	err       *color.Color
	warn      *color.Color
	info      *color.Color
	timestamp *color.Color
}

// NewColors creates the palette from "r,g,b" config values.
// malformed or empty values fall back to the basic ANSI colors.
func NewColors(cfg config.ColorConfig) *Colors {
	return &Colors{
		pass:      rgbOr(cfg.Pass, color.FgGreen),
		fail:      rgbOr(cfg.Fail, color.FgRed),
		err:       rgbOr(cfg.Error, color.FgYellow),
		warn:      rgbOr(cfg.Warn, color.FgYellow),
		info:      rgbOr(cfg.Info, color.FgWhite),
		timestamp: rgbOr(cfg.Timestamp, color.FgWhite),
	}
}

// Pass returns the color for passed cases.
func (c *Colors) Pass() *color.Color { return c.pass }

// Fail returns the color for assertion mismatches.
func (c *Colors) Fail() *color.Color { return c.fail }

// Error returns the color for environment failures and errors.
func (c *Colors) Error() *color.Color { return c.err }

// Warn returns the warning color.
func (c *Colors) Warn() *color.Color { return c.warn }

// Info returns the color for informational output.
func (c *Colors) Info() *color.Color { return c.info }

// Timestamp returns the timestamp prefix color.
func (c *Colors) Timestamp() *color.Color { return c.timestamp }

func rgbOr(val string, fallback color.Attribute) *color.Color {
	parts := strings.Split(val, ",")
	if len(parts) != 3 {
		return color.New(fallback)
	}
	var rgb [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return color.New(fallback)
		}
		rgb[i] = n
	}
	return color.RGB(rgb[0], rgb[1], rgb[2])
}
