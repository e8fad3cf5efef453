// Package docx implements the document generation engine used by the report
// export pipeline: token substitution over uploaded document packages, a
// programmatic builder for the default layout, and the capability provider
// that acquires the package scaffold the builder composes onto.
package docx

import "strings"

// Token delimiters. Placeholders in custom templates look like 【name】 with
// full-width brackets; the enclosed name is matched literally against the
// aggregated token map.
const (
	TokenOpen  = '【'
	TokenClose = '】'
)

// TokenMap maps canonical token names to their rendered values. Absent data
// is represented as an empty string, never a missing key with special meaning.
type TokenMap map[string]string

// SubstituteTokens replaces every 【name】 span in text with values[name].
// A name missing from values renders as the empty string; the bracketed
// literal never survives substitution. Delimiter characters outside a
// recognized token span pass through unchanged, as does all non-token text.
// The scan is a single pass: substituted values are not rescanned.
func SubstituteTokens(text string, values TokenMap) string {
	if !strings.ContainsRune(text, TokenOpen) {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] != TokenOpen {
			out.WriteRune(runes[i])
			i++
			continue
		}

		end := tokenEnd(runes, i+1)
		if end < 0 {
			// Unclosed opener is literal text.
			out.WriteRune(runes[i])
			i++
			continue
		}

		name := string(runes[i+1 : end])
		out.WriteString(values[name])
		i = end + 1
	}

	return out.String()
}

// tokenEnd returns the index of the closing bracket for a token whose opener
// sits at start-1, or -1 when the span never closes. A second opener before
// the close demotes the first opener to literal text.
func tokenEnd(runes []rune, start int) int {
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case TokenClose:
			return i
		case TokenOpen:
			return -1
		}
	}
	return -1
}

// xmlEscaped returns a copy of values safe to splice into XML text nodes.
func xmlEscaped(values TokenMap) TokenMap {
	escaped := make(TokenMap, len(values))
	for name, value := range values {
		escaped[name] = escapeXML(value)
	}
	return escaped
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
