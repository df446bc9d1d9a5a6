// Package postprocess splits an assistant reply into the code it carries and
// the prose shown in the chat transcript.
package postprocess

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinDisplayLength is the rune count under which display text is
	// replaced by a fallback sentence.
	MinDisplayLength = 20

	FallbackWithCode = "I've updated your code in the output panel with the requested changes."
	FallbackNoCode   = "I've analyzed your request and provided the necessary solution."
)

var (
	fencedBlock  = regexp.MustCompile("(?s)```.*?```")
	// A language tag counts only when it is alone on the opening-fence line.
	fenceMarkers = regexp.MustCompile("```[\\w+#.-]*[ \\t]*\\n|```")
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	blankLines   = regexp.MustCompile(`\n\s*\n`)
)

// ExtractCode returns the trimmed contents of every complete fenced block in
// text, joined by a blank line, in order of appearance. The language label
// after an opening fence is dropped. An unmatched fence contributes nothing.
func ExtractCode(text string) string {
	blocks := fencedBlock.FindAllString(text, -1)
	if len(blocks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, strings.TrimSpace(fenceMarkers.ReplaceAllString(b, "")))
	}
	return strings.Join(parts, "\n\n")
}

// StripCodeAndNormalize removes every complete fenced block from text and
// normalizes whitespace: trimmed, with runs of blank lines collapsed to one.
// Applying it to its own output is a no-op.
func StripCodeAndNormalize(text string) string {
	out := text
	for {
		next := fencedBlock.ReplaceAllString(out, "")
		if next == out {
			break
		}
		out = next
	}
	return normalize(out)
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// WithFallback replaces display prose shorter than MinDisplayLength runes
// with FallbackWithCode if code was extracted, FallbackNoCode otherwise.
func WithFallback(display string, codeExtracted bool) string {
	if utf8.RuneCountInString(display) >= MinDisplayLength {
		return display
	}
	if codeExtracted {
		return FallbackWithCode
	}
	return FallbackNoCode
}

// Result is a reply split for presentation.
type Result struct {
	Code    string
	Display string
}

// HasCode reports whether the reply contained at least one non-empty block.
func (r Result) HasCode() bool {
	return r.Code != ""
}

func Process(reply string) Result {
	code := ExtractCode(reply)
	return Result{Code: code, Display: WithFallback(StripCodeAndNormalize(reply), code != "")}
}
