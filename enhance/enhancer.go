package enhance

import "strings"

// Characters which would otherwise let the input inject its own markup. Quotes are left alone in text content.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Result - Display text plus the names of the enhancements applied to produce it, in the order applied.
type Result struct {
	Text         string   `json:"text"`
	Enhancements []string `json:"enhancements"`
}

// Enhancer - Renders (already masked) text for display. Implementations must be pure: the same input always
// produces the same Result, and nothing a classifier would match on is introduced. Whether Result.Text is HTML
// or plain text is up to the implementation.
type Enhancer interface {
	Enhance(text string) Result
}

// None - An Enhancer which returns the text unchanged. The result is plain text, not HTML.
type None struct {
}

func (n *None) Enhance(text string) Result {
	return Result{Text: text, Enhancements: make([]string, 0)}
}

// Default - The standard Enhancer: emoticons, links, mentions, hashtags, markup, and formulas. The result is
// HTML: the input's own &, < and > are escaped before any markup is added.
type Default struct {
	linkDenyList []string
}

// NewDefault - Creates a Default enhancer. Links matching any of the deny globs are not turned into anchors.
func NewDefault(linkDenyList []string) *Default {
	denyList := make([]string, 0, len(linkDenyList))
	for _, g := range linkDenyList {
		if g != "" {
			denyList = append(denyList, g)
		}
	}
	return &Default{linkDenyList: denyList}
}

func (d *Default) Enhance(text string) Result {
	applied := make([]string, 0)

	text, applied = replaceEmoticons(text, applied)
	text = textEscaper.Replace(text)
	text, applied = d.linkify(text, applied)
	text, applied = renderFormulas(text, applied)
	for _, m := range markups {
		text, applied = m.apply(text, applied)
	}

	return Result{Text: text, Enhancements: applied}
}
