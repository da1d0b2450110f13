package title

import (
	"errors"
	"regexp"
)

// ErrNotFound is returned when a built page has no <title> element.
var ErrNotFound = errors.New("page has no title")

var titlePattern = regexp.MustCompile(`<title[^>]*>([^<]+)</title>`)

// Result holds the outcome of a title lookup
type Result struct {
	Title string
	Found bool
}

// Extract returns the text of the first <title> element in page.
func Extract(page string) Result {
	m := titlePattern.FindStringSubmatch(page)
	if m == nil {
		return Result{}
	}
	return Result{Title: m[1], Found: true}
}
