package markdown

import (
	"strings"

	"github.com/yuin/goldmark/util"
)

var lineBreaks = strings.NewReplacer("\r\n", "<br />", "\r", "<br />", "\n", "<br />")

// PlainText is the last-resort rendering: HTML special characters are
// escaped and every line break becomes <br />.
func PlainText(source []byte) string {
	return lineBreaks.Replace(string(util.EscapeHTML(source)))
}
