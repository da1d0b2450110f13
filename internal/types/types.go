package types

// PageType tags a route as reported by the site build.
type PageType string

const (
	PageTypePage     PageType = "page"
	PageTypeEndpoint PageType = "endpoint"
	PageTypeRedirect PageType = "redirect"
)

// Route describes one page produced by the static build
type Route struct {
	Type      PageType `yaml:"type" json:"type"`
	Component string   `yaml:"component" json:"component"`
	DistPath  string   `yaml:"dist" json:"dist"`
	Pathname  string   `yaml:"pathname" json:"pathname"`
}

// Card is one rendered social-preview image
type Card struct {
	Route Route
	Title string
	Path  string
	Size  int
}

// Report summarizes a single generation pass
type Report struct {
	Considered int
	Qualifying int
	Written    int
	Skipped    int
	Cards      []Card
}
