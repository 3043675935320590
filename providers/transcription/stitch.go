package transcription

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and strips the combining marks,
// so "café" and "cafe" compare equal during overlap detection.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeASCII(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// MergeChunks stitches sequentially transcribed audio segments back into one
// text. Consecutive segments usually share a few words around the cut point;
// the longest common boundary is searched case-insensitively on
// ASCII-folded text, from 100 characters down to a minimum of 11 so short
// coincidental matches never trigger elision. Overlapping text is dropped
// from the later segment; segments with no detected overlap are joined with
// a newline.
func MergeChunks(chunks []string) string {
	var merged strings.Builder
	last := ""

	for _, text := range chunks {
		clean := strings.TrimSpace(text)
		if clean == "" {
			continue
		}

		a := normalizeASCII(last)
		b := normalizeASCII(clean)
		maxOverlap := min(100, min(len(a), len(b)))

		overlap := 0
		for j := maxOverlap; j > 10; j-- {
			if a[len(a)-j:] == b[:j] {
				overlap = j
				break
			}
		}

		if overlap > 0 {
			merged.WriteString(clean[overlap:])
		} else {
			merged.WriteString("\n")
			merged.WriteString(clean)
		}
		last = clean
	}

	return strings.TrimSpace(merged.String())
}
