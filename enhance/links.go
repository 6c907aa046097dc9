package enhance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ryanuber/go-glob"
)

const EnhancementLink = "Link detected"
const EnhancementLinkSuppressed = "Link suppressed"
const EnhancementMention = "Mention detected"
const EnhancementHashtag = "Hashtag detected"

// Text reaching linkify is already escaped, so only quotes still need escaping inside the href.
var attributeEscaper = strings.NewReplacer("'", "&#39;", "\"", "&#34;")

// One pass over all three, so markup generated for one is never matched by another.
var linkMentionHashtagRegex = regexp.MustCompile(`https?://\S+|@\w+|#\w+`)

func (d *Default) isDenied(link string) bool {
	for _, g := range d.linkDenyList {
		if glob.Glob(g, link) {
			return true
		}
	}
	return false
}

func (d *Default) linkify(text string, applied []string) (string, []string) {
	links, suppressed, mentions, hashtags := 0, 0, 0, 0
	text = linkMentionHashtagRegex.ReplaceAllStringFunc(text, func(s string) string {
		switch {
		case strings.HasPrefix(s, "@"):
			mentions++
			return fmt.Sprintf("<span class='mention'>%s</span>", s)
		case strings.HasPrefix(s, "#"):
			hashtags++
			return fmt.Sprintf("<span class='hashtag'>%s</span>", s)
		}
		if d.isDenied(s) {
			suppressed++
			return s
		}
		links++
		escaped := attributeEscaper.Replace(s)
		return fmt.Sprintf("<a href='%s' target='_blank'>%s</a>", escaped, escaped)
	})

	if links > 0 {
		applied = append(applied, EnhancementLink)
	}
	if suppressed > 0 {
		applied = append(applied, EnhancementLinkSuppressed)
	}
	if mentions > 0 {
		applied = append(applied, EnhancementMention)
	}
	if hashtags > 0 {
		applied = append(applied, EnhancementHashtag)
	}
	return text, applied
}
