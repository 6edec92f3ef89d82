package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all status output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle is used for table and section headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleLink is used for addresses the user can open.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue is used for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning is used for warnings and rows that need attention.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printLine(icon lipgloss.Style, glyph, msg string) {
	fmt.Fprintln(stdout, icon.Render(glyph)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess, iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError, iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(StyleWarning, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo, iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a file that was written.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printStats prints the reconstruction summary line:
//
//	4 stripes · cost 72 · 3ms · fresh
func printStats(stripes int, cost float64, elapsed time.Duration, cached bool) {
	parts := []string{
		fmt.Sprintf("%d stripes", stripes),
		"cost " + formatCost(cost),
	}
	if elapsed > 0 {
		parts = append(parts, elapsed.Round(time.Millisecond).String())
	}
	status := StyleDim.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · "))+sep+status)
}

// formatCost prints integral costs without decimals.
func formatCost(cost float64) string {
	if cost == math.Trunc(cost) {
		return strconv.FormatFloat(cost, 'f', 0, 64)
	}
	return strconv.FormatFloat(cost, 'f', 3, 64)
}
