// Package routes selects the built pages that get a social-preview card and
// reads the route list handed over by the site build.
package routes

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-scripts/ogcards/internal/types"
)

// DefaultContentExt is the extension of authored long-form posts.
const DefaultContentExt = ".mdx"

var (
	// ErrInvalidRoute is returned for a qualifying route that cannot be rendered.
	ErrInvalidRoute = errors.New("invalid route")
	// ErrInvalidManifest is returned for a route list of the wrong shape.
	ErrInvalidManifest = errors.New("invalid route manifest")
)

// Qualifies reports whether route is an authored post that needs a card.
func Qualifies(route types.Route, ext string) bool {
	if ext == "" {
		ext = DefaultContentExt
	}
	return route.Type == types.PageTypePage && strings.HasSuffix(route.Component, ext)
}

// Filter keeps the qualifying routes in their original order.
func Filter(all []types.Route, ext string) []types.Route {
	var out []types.Route
	for _, r := range all {
		if Qualifies(r, ext) {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks that a route carries what the generator needs.
func Validate(route types.Route) error {
	if route.DistPath == "" {
		return fmt.Errorf("%w: %s has no built file", ErrInvalidRoute, route.Component)
	}
	if !strings.HasPrefix(route.Pathname, "/") {
		return fmt.Errorf("%w: %s has pathname %q", ErrInvalidRoute, route.Component, route.Pathname)
	}
	return nil
}

// LoadManifest reads the route list from path, or from stdin when path is "-".
// Both a bare list and a document with a top-level "routes" key are accepted.
// JSON input is read through the YAML decoder. Relative dist paths are
// resolved against outDir.
func LoadManifest(path, outDir string) ([]types.Route, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read route manifest: %w", err)
	}

	all, err := Parse(data)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].DistPath != "" && !filepath.IsAbs(all[i].DistPath) {
			all[i].DistPath = filepath.Join(outDir, all[i].DistPath)
		}
	}
	return all, nil
}

// Parse decodes a route manifest document. The root must be a list of
// routes or a mapping with a "routes" list; anything else is rejected.
func Parse(data []byte) ([]types.Route, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse route manifest: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
	}

	list := root.Content[0]
	switch list.Kind {
	case yaml.SequenceNode:
	case yaml.MappingNode:
		list = mappingValue(list, "routes")
		if list == nil {
			return nil, fmt.Errorf("%w: no routes key", ErrInvalidManifest)
		}
		if list.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: routes must be a list (line %d)", ErrInvalidManifest, list.Line)
		}
	default:
		return nil, fmt.Errorf("%w: expected a list or a routes key (line %d)", ErrInvalidManifest, list.Line)
	}

	all := []types.Route{}
	if err := list.Decode(&all); err != nil {
		return nil, fmt.Errorf("failed to decode routes: %w", err)
	}
	return all, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
