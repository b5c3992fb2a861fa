// ABOUTME: Shared output helpers for CLI commands.
// ABOUTME: Column padding that respects wide CJK glyphs, dates and progress bars.
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/big3/internal/models"
	"github.com/mattn/go-runewidth"
)

var (
	faint   = color.New(color.Faint)
	bold    = color.New(color.Bold)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	magenta = color.New(color.FgMagenta, color.Bold)
)

func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

func warn(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "⚠ "+format+"\n", a...)
}

// dateArg resolves a --date flag, defaulting to today.
func dateArg(s string) (string, error) {
	if s == "" {
		return models.Today(), nil
	}
	t, err := models.ParseDate(s)
	if err != nil {
		return "", err
	}
	return models.FormatDate(t), nil
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + faint.Sprint(strings.Repeat("░", width-filled))
}

var weekdaysJa = [...]string{"日", "月", "火", "水", "木", "金", "土"}

func weekdayName(d time.Weekday) string {
	return weekdaysJa[d] + " " + d.String()[:3]
}

// parseWeekday accepts 0-6, English names or abbreviations, and 日-土.
func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		ja := weekdaysJa[d]
		if s == name || s == name[:3] || s == ja || s == ja+"曜" || s == ja+"曜日" || s == fmt.Sprint(int(d)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}
