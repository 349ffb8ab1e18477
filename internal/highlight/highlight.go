// Package highlight renders C++ signatures with ANSI colors via Chroma,
// decoupled from the query engine.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Signature returns an ANSI-highlighted version of a C++ signature. Any
// failure falls back to the plain text; output never gains a trailing
// newline.
func Signature(text string) string {
	lex := lexers.Get("c++")
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	fmtr := formatters.Get("terminal")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Fallback, it); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}
