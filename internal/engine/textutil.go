package engine

import (
	"io"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// TruncationMarker is appended by TruncateChars when it cuts text.
const TruncationMarker = "..."

// TruncateChars bounds text to maxChars characters (runes). Longer text is cut
// hard at maxChars and TruncationMarker is appended, so the result may be up to
// maxChars+3 characters long. A non-positive maxChars disables the bound.
func TruncateChars(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i] + TruncationMarker
		}
		n++
	}
	return text
}

// CleanCaption turns a raw caption fragment into plain text: entities are
// decoded, inline markup like <font> or <i> is dropped and whitespace collapsed.
func CleanCaption(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
			}
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.WriteString(z.Token().Data)
		case html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

// Preview caps s at limit runes for log attributes and error messages.
func Preview(s string, limit int) string {
	return strutil.TruncateWith(s, limit, "…")
}
