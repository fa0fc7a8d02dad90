// Package ui provides the small set of styled render helpers used by
// the CLI output.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// RenderAccent styles informational highlights.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderPass styles success markers.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn styles warnings.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderErr styles errors.
func RenderErr(s string) string { return errStyle.Render(s) }

// RenderFaint styles secondary detail.
func RenderFaint(s string) string { return faintStyle.Render(s) }
