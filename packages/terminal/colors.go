package terminal

import (
	"regexp"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Common style sets used across the renderers.
var (
	StyleError   = []color.Attribute{color.FgRed}
	StyleSuccess = []color.Attribute{color.FgGreen}
	StyleWarning = []color.Attribute{color.FgYellow}
	StyleMuted   = []color.Attribute{color.FgHiBlack}
	StyleHeading = []color.Attribute{color.FgCyan, color.Bold}
)

var ansiRegex = regexp.MustCompile(`\x1b\[[;\d]*m`)

// Colorizer wraps text in terminal style sequences. A disabled Colorizer
// returns its input untouched.
type Colorizer struct {
	enabled bool
}

// NewColorizer creates a Colorizer. The process-wide color.NoColor switch is
// never consulted; enabled alone decides.
func NewColorizer(enabled bool) *Colorizer {
	return &Colorizer{enabled: enabled}
}

// Enabled reports whether styles are applied.
func (c *Colorizer) Enabled() bool {
	return c != nil && c.enabled
}

// Colorize prefixes text with the given styles and appends a reset.
func (c *Colorizer) Colorize(text string, styles ...color.Attribute) string {
	if !c.Enabled() || text == "" {
		return text
	}
	col := color.New(styles...)
	col.EnableColor()
	return col.Sprint(text)
}

// StripANSI removes every style and reset sequence from text.
func StripANSI(text string) string {
	if text == "" {
		return text
	}
	return ansiRegex.ReplaceAllString(text, "")
}

// VisibleWidth returns the number of terminal cells text occupies once its
// style sequences are removed. Wide runes such as emoji count as two.
func VisibleWidth(text string) int {
	return runewidth.StringWidth(StripANSI(text))
}
