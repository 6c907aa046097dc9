package enhance

import (
	"fmt"
	"strings"
)

type emoticon struct {
	text  string
	emoji string
}

// Applied in this order. Longer forms never contain shorter ones, so the order only affects how the
// enhancements are listed.
var emoticons = []emoticon{
	{":-)", "😊"},
	{":)", "😊"},
	{":-(", "😢"},
	{":(", "😢"},
	{":D", "😃"},
	{":-D", "😃"},
	{":*", "😘"},
	{":-*", "😘"},
	{";)", "😉"},
	{";-)", "😉"},
	{":P", "😛"},
	{":-P", "😛"},
	{"XD", "😆"},
	{":'(", "😭"},
	{":O", "😮"},
	{":-O", "😮"},
}

func replaceEmoticons(text string, applied []string) (string, []string) {
	for _, e := range emoticons {
		if strings.Contains(text, e.text) {
			text = strings.ReplaceAll(text, e.text, e.emoji)
			applied = append(applied, fmt.Sprintf("Emoji '%s' → '%s'", e.text, e.emoji))
		}
	}
	return text, applied
}
