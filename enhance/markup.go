package enhance

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type markup struct {
	delimiter   byte
	open        string
	close       string
	enhancement string
}

var markups = []markup{
	{'*', "<b>", "</b>", "Bold formatting"},
	{'-', "<i>", "</i>", "Italic formatting"},
	{'_', "<u>", "</u>", "Underline formatting"},
	{'/', "<span style='font-family:cursive'>", "</span>", "Font style"},
}

// apply wraps every delimited span in the markup's tags. The opening delimiter must start the text or
// follow whitespace, the closing delimiter must end the text or precede whitespace or punctuation, and the
// content must be non-empty without leading or trailing whitespace or delimiters. This keeps masked words
// ("****") and arithmetic ("a - b - c") intact.
func (m markup) apply(text string, applied []string) (string, []string) {
	if strings.IndexByte(text, m.delimiter) < 0 {
		return text, applied
	}

	b := strings.Builder{}
	i := 0
	for i < len(text) {
		end := m.match(text, i)
		if end < 0 {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(m.open)
		b.WriteString(text[i+1 : end])
		b.WriteString(m.close)
		applied = append(applied, m.enhancement)
		i = end + 1
	}
	return b.String(), applied
}

// match returns the index of the closing delimiter for an opening delimiter at i, or -1.
func (m markup) match(text string, i int) int {
	if text[i] != m.delimiter {
		return -1
	}
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:i])
		if !unicode.IsSpace(prev) {
			return -1
		}
	}
	if i+1 >= len(text) || !m.isEdge(text[i+1]) {
		return -1
	}

	end := strings.IndexByte(text[i+1:], m.delimiter)
	if end < 0 {
		return -1
	}
	end += i + 1
	if !m.isEdge(text[end-1]) {
		return -1
	}
	if strings.ContainsAny(text[i+1:end], "\n") {
		return -1
	}
	if end+1 < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end+1:])
		if !unicode.IsSpace(next) && !unicode.IsPunct(next) {
			return -1
		}
	}
	return end
}

func (m markup) isEdge(c byte) bool {
	return c != m.delimiter && c != ' ' && c != '\t' && c != '\n' && c != '\r'
}
