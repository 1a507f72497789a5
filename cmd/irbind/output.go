package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	noteColor = color.New(color.Faint)

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

func okMark() string    { return okColor.Sprint("✓") }
func errorMark() string { return failColor.Sprint("✗") }

// heading styles a section title when color is on.
func (s *session) heading(text string) string {
	if !s.color {
		return text
	}
	return headingStyle.Render(text)
}

func (s *session) note(text string) string {
	return noteColor.Sprint(text)
}
