package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorGood   = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorBad    = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue
	colorValue  = lipgloss.Color("255") // bright white
	colorLabel  = lipgloss.Color("245") // gray
	colorMuted  = lipgloss.Color("240") // dim gray
)

var (
	styleAccent  = lipgloss.NewStyle().Foreground(colorAccent)
	styleGood    = lipgloss.NewStyle().Foreground(colorGood)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleBad     = lipgloss.NewStyle().Foreground(colorBad)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleValue   = lipgloss.NewStyle().Foreground(colorValue)
	styleLabel   = lipgloss.NewStyle().Foreground(colorLabel).Width(13)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)

const (
	markOK   = "✓"
	markFail = "✗"
	markWarn = "!"
	markInfo = "›"
	markFile = "→"
)

// =============================================================================
// Printer
// =============================================================================

// printer writes styled status lines for humans. Machine-readable output
// (evaluate, cache path) bypasses it.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) mark(mark string, style lipgloss.Style, msg string) {
	fmt.Fprintln(p.w, style.Render(mark)+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.mark(markOK, styleGood, fmt.Sprintf(format, args...))
}

func (p printer) failure(format string, args ...any) {
	p.mark(markFail, styleBad, fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.mark(markWarn, styleWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.mark(markInfo, styleMuted, fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+styleMuted.Render(markFile)+" "+styleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, styleLabel.Render(key)+" "+styleValue.Render(value))
}

// kernelStats prints "N orientations · n³ window · cached|fresh".
func (p printer) kernelStats(orientations, extent int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d orientations", orientations),
		fmt.Sprintf("%d³ window", extent),
	}
	if cached {
		parts = append(parts, styleGood.Render("cached"))
	} else {
		parts = append(parts, styleMuted.Render("fresh"))
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, styleMuted.Render(" · ")))
}

func (p printer) nextStep(description, cmd string) {
	fmt.Fprintln(p.w, styleMuted.Render(description+":")+" "+styleCommand.Render(cmd))
}
