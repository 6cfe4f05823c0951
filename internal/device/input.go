package device

import "strings"

// shellSpecial are characters the device shell would otherwise interpret.
const shellSpecial = `"'()<>|;&*~$` + "`" + `?#!{}[]`

// EscapeInputText prepares text for "input text". Spaces become %s, which
// the input command turns back into spaces, and shell metacharacters are
// backslash-escaped. Empty text becomes an explicit empty argument.
func EscapeInputText(text string) string {
	if text == "" {
		return `""`
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		switch {
		case r == ' ':
			b.WriteString("%s")
		case r == '\\':
			b.WriteString(`\\`)
		case strings.ContainsRune(shellSpecial, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
