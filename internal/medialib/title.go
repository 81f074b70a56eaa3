package medialib

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// maxTitleLen matches the size of the title column.
const maxTitleLen = 255

// CleanTitle turns a user-supplied title or file name into a single line
// that fits the title column.
func CleanTitle(title string) string {
	title = controlChars.ReplaceAllString(title, " ")
	title = multipleSpaces.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if utf8.RuneCountInString(title) > maxTitleLen {
		title = strings.TrimSpace(string([]rune(title)[:maxTitleLen]))
	}
	return title
}
