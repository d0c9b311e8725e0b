package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	clusterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	pointStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func init() {
	// plain text when piped
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		titleStyle = lipgloss.NewStyle()
		clusterStyle = lipgloss.NewStyle()
		pointStyle = lipgloss.NewStyle()
		labelStyle = lipgloss.NewStyle()
	}
}

func stat(label string, value interface{}) string {
	return fmt.Sprintf("%s %v", labelStyle.Render(label+":"), value)
}
