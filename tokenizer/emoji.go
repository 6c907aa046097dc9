package tokenizer

import (
	"strings"
	"unicode/utf8"
)

const variationSelector = '\uFE0F'

type runeRange struct {
	lo rune
	hi rune
}

var emojiRanges = []runeRange{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F680, 0x1F6FF}, // transport & map
	{0x1F1E0, 0x1F1FF}, // flags
	{0x1F900, 0x1F9FF}, // supplemental symbols & pictographs
	{0x2600, 0x27BF},   // misc symbols, dingbats
}

// IsEmoji - Returns true if the rune falls in one of the recognised emoji blocks.
func IsEmoji(r rune) bool {
	for _, rr := range emojiRanges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// spaceEmoji surrounds every emoji (and its variation selector, if any) with spaces. Everything else,
// including invalid UTF-8, is copied through byte for byte.
func spaceEmoji(text string) string {
	b := strings.Builder{}
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !IsEmoji(r) {
			b.WriteString(text[i : i+size])
			i += size
			continue
		}

		b.WriteByte(' ')
		b.WriteString(text[i : i+size])
		i += size
		if next, nextSize := utf8.DecodeRuneInString(text[i:]); next == variationSelector {
			b.WriteString(text[i : i+nextSize])
			i += nextSize
		}
		b.WriteByte(' ')
	}
	return b.String()
}
