// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux renders walk listings for the treewalk CLI.
package ux

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Palette, brightest to darkest. Depth styles cycle through it.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealVibrant = lipgloss.Color("#1D9EA3")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorTealOcean   = lipgloss.Color("#157483")
	ColorSlate       = lipgloss.Color("#2C4A54")
	ColorWarning     = lipgloss.Color("#F4D03F")
)

var depthColors = []lipgloss.Color{
	ColorTealBright,
	ColorTealPrimary,
	ColorTealVibrant,
	ColorTealDeep,
	ColorTealOcean,
}

// ColorMode selects when output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ErrUnknownColorMode is returned by ParseColorMode.
var ErrUnknownColorMode = errors.New("unknown color mode")

// ParseColorMode converts "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return ColorAuto, fmt.Errorf("%w: %q", ErrUnknownColorMode, s)
	}
}

// Printer writes one line per visited node, indented by depth.
//
// # Thread Safety
//
// Not safe for concurrent use; the CLI prints from a single goroutine.
type Printer struct {
	w      io.Writer
	indent int
	styled bool

	depth   []lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style

	lines int
}

// NewPrinter creates a printer for w.
//
// In ColorAuto mode color is used only when w is a terminal and NO_COLOR is
// unset.
func NewPrinter(w io.Writer, mode ColorMode, indent int) *Printer {
	p := &Printer{
		w:      w,
		indent: indent,
		styled: colorEnabled(w, mode),
	}
	if !p.styled {
		return p
	}

	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.TrueColor)
	for _, c := range depthColors {
		p.depth = append(p.depth, r.NewStyle().Foreground(c))
	}
	p.depth[0] = p.depth[0].Bold(true)
	p.heading = r.NewStyle().Bold(true).Foreground(ColorTealBright)
	p.muted = r.NewStyle().Foreground(ColorSlate)
	p.warning = r.NewStyle().Foreground(ColorWarning)
	return p
}

// Styled reports whether the printer emits color.
func (p *Printer) Styled() bool {
	return p.styled
}

// Lines returns how many node lines have been written.
func (p *Printer) Lines() int {
	return p.lines
}

// Node writes label indented for depth.
func (p *Printer) Node(depth int, label string) error {
	p.lines++
	pad := strings.Repeat(" ", max(depth, 0)*p.indent)
	if p.styled {
		label = p.depth[depth%len(p.depth)].Render(label)
	}
	_, err := fmt.Fprintf(p.w, "%s%s\n", pad, label)
	return err
}

// Heading writes a section title, e.g. the file being walked.
func (p *Printer) Heading(text string) error {
	if p.styled {
		text = p.heading.Render(text)
	} else {
		text = "== " + text
	}
	_, err := fmt.Fprintln(p.w, text)
	return err
}

// Summary writes the node count and elapsed time. truncated marks a walk
// stopped by a limit.
func (p *Printer) Summary(nodes int, truncated bool, elapsed time.Duration) error {
	text := fmt.Sprintf("%d nodes in %s", nodes, elapsed.Round(time.Microsecond))
	if truncated {
		text += " (limit reached)"
	}
	if p.styled {
		if truncated {
			text = p.warning.Render(text)
		} else {
			text = p.muted.Render(text)
		}
	}
	_, err := fmt.Fprintln(p.w, text)
	return err
}

func colorEnabled(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
