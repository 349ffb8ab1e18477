package main

import (
	"strings"

	"github.com/jward/liana"
	"github.com/jward/liana/internal/highlight"
)

const (
	ctrlGreen = "\033[32m"
	ctrlReset = "\033[0m"
)

// ansiStyler renders edges with green tree glyphs and Chroma-highlighted
// C++ signatures.
type ansiStyler struct{}

func (ansiStyler) Edge(depth int, text string) string {
	return strings.Repeat(ctrlGreen+"|"+ctrlReset+"  ", depth) +
		ctrlGreen + "|--" + ctrlReset + highlight.Signature(text)
}

func (ansiStyler) Suggestion(text string) string {
	return highlight.Signature(text)
}

func (ansiStyler) Plain(text string) string { return text }

func newStyler(noColor bool) liana.Styler {
	if noColor {
		return liana.PlainStyler{}
	}
	return ansiStyler{}
}
