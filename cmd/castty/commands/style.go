// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// styles renders report output. The renderer detects the color
// profile of its writer, so piped output is plain text.
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	faint   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	marker  lipgloss.Style
}

func newStyles(w io.Writer, options ...termenv.OutputOption) styles {
	renderer := lipgloss.NewRenderer(w, options...)
	return styles{
		heading: renderer.NewStyle().Bold(true),
		label:   renderer.NewStyle().Width(10).Foreground(lipgloss.Color("12")),
		faint:   renderer.NewStyle().Faint(true),
		good:    renderer.NewStyle().Foreground(lipgloss.Color("10")),
		bad:     renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		marker:  renderer.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// plainStyles renders without escape sequences.
func plainStyles(w io.Writer) styles {
	return newStyles(w, termenv.WithProfile(termenv.Ascii))
}
