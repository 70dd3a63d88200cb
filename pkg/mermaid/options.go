package mermaid

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultTheme is used when the requested theme is not supported
const DefaultTheme = "default"

// Themes supported by the renderer
var Themes = []string{"default", "dark", "forest", "neutral"}

// Request to render a diagram
type Request struct {
	// Syntax is the Mermaid diagram source, required
	Syntax string
	// Width of the output in pixels, zero means the configured default.
	// The value is clamped to the configured dimension bounds.
	Width int
	// Theme is one of Themes, any other value falls back to DefaultTheme
	Theme string
}

// NormalizeTheme returns the theme if it is supported, or DefaultTheme
func NormalizeTheme(theme string) string {
	if slices.Contains(Themes, theme) {
		return theme
	}
	return DefaultTheme
}

// ClampWidth returns width limited to [minWidth, maxWidth]
func ClampWidth(width, minWidth, maxWidth int) int {
	return max(minWidth, min(maxWidth, width))
}

// CountLines returns the number of non-blank lines
func CountLines(syntax string) int {
	count := 0
	for line := range strings.Lines(syntax) {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// ScaleFor returns the pixel density for the diagram.
// Small diagrams get higher density, large ones are capped
// to keep the image within the limits of chat surfaces.
func ScaleFor(syntax string) int {
	switch lines := CountLines(syntax); {
	case lines <= 10:
		return 5
	case lines <= 25:
		return 4
	case lines <= 50:
		return 3
	default:
		return 2
	}
}

// BuildArgs returns mmdc arguments
func BuildArgs(input, output string, width, scale int, theme string) []string {
	return []string{
		"-i", input,
		"-o", output,
		"-w", strconv.Itoa(width),
		"-s", strconv.Itoa(scale),
		"-t", theme,
		"-b", "transparent",
		"--quiet",
	}
}
