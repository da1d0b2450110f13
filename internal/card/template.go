// Package card materializes the preview template and post-processes the
// captured screenshot.
package card

import (
	"fmt"
	"os"
	"strings"
)

// Placeholder is replaced with the page title.
const Placeholder = "@title"

// DefaultTemplatePath is where the site keeps its card template.
const DefaultTemplatePath = "src/og-image/og-image.html"

// LoadTemplate reads the template from disk. It is not cached so edits are
// picked up by the next route.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read card template: %w", err)
	}
	return string(data), nil
}

// Materialize substitutes title for the first placeholder only.
func Materialize(tpl, title string) string {
	return strings.Replace(tpl, Placeholder, title, 1)
}
