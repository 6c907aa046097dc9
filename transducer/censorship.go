package transducer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matrix-org/postguard/lexicon"
)

const maskRune = '*'

// CensorshipFST - Masks bad, sexual, and violent words in raw text. It reads the text directly rather
// than going through the tokenizer. Safe for concurrent use.
type CensorshipFST struct {
	lex *lexicon.Lexicon
}

func NewCensorshipFST(lex *lexicon.Lexicon) *CensorshipFST {
	return &CensorshipFST{lex: lex}
}

// ProcessText - Replaces every rune of each censored word with '*'. A word is a run of letters. Everything
// else is copied through unchanged, then trailing whitespace is trimmed.
func (f *CensorshipFST) ProcessText(text string) string {
	masked, _ := f.scan(text)
	return masked
}

// Masked - Returns the words ProcessText would mask, in order of appearance.
func (f *CensorshipFST) Masked(text string) []string {
	_, words := f.scan(text)
	return words
}

func (f *CensorshipFST) scan(text string) (string, []string) {
	b := strings.Builder{}
	b.Grow(len(text))
	words := make([]string, 0)

	wordStart := -1
	flush := func(end int) {
		if wordStart < 0 {
			return
		}
		word := text[wordStart:end]
		if f.lex.IsCensored(word) {
			b.WriteString(strings.Repeat(string(maskRune), utf8.RuneCountInString(word)))
			words = append(words, word)
		} else {
			b.WriteString(word)
		}
		wordStart = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsLetter(r) {
			if wordStart < 0 {
				wordStart = i
			}
		} else {
			flush(i)
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	flush(len(text))

	return strings.TrimRightFunc(b.String(), unicode.IsSpace), words
}
