package writer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CardsSubdir is where cards live inside the build output.
const CardsSubdir = "assets/twitter-cards"

// FileWriter writes card images below the build output directory
type FileWriter struct {
	cardsDir string
	prefix   string
}

// New prepares the cards directory under outDir and returns a FileWriter.
// prefix, when set, is stripped from route paths before they are mapped to
// files.
func New(outDir, prefix string) (*FileWriter, error) {
	dir, err := EnsureDir(outDir)
	if err != nil {
		return nil, err
	}
	return &FileWriter{cardsDir: dir, prefix: prefix}, nil
}

// EnsureDir creates <outDir>/assets/twitter-cards if it does not exist yet.
// Only the last element is created; its parents must already exist.
func EnsureDir(outDir string) (string, error) {
	dir := filepath.Join(outDir, filepath.FromSlash(CardsSubdir))

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir, nil
	case err == nil:
		return "", fmt.Errorf("cards path %s exists and is not a directory", dir)
	case !os.IsNotExist(err):
		return "", fmt.Errorf("failed to stat cards directory: %w", err)
	}

	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cards directory: %w", err)
	}
	return dir, nil
}

// Dir returns the cards directory.
func (w *FileWriter) Dir() string {
	return w.cardsDir
}

// PathFor maps a route's public path to its image file.
func (w *FileWriter) PathFor(pathname string) string {
	return OutputPath(w.cardsDir, pathname, w.prefix)
}

// Write stores the image for pathname, replacing any previous one, and
// returns the file path.
func (w *FileWriter) Write(pathname string, data []byte) (string, error) {
	target := w.PathFor(pathname)

	// Nested routes need their own subdirectories.
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write card: %w", err)
	}
	return target, nil
}

// OutputPath builds cardsDir + pathname + ".png".
func OutputPath(cardsDir, pathname, prefix string) string {
	p := stripPrefix(pathname, prefix)

	// Rooting before Clean keeps ".." from escaping cardsDir.
	p = path.Clean("/" + p)
	if p == "/" {
		p = "/index"
	}
	return filepath.Join(cardsDir, filepath.FromSlash(p)+".png")
}

func stripPrefix(pathname, prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return pathname
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if pathname == prefix {
		return "/"
	}
	if strings.HasPrefix(pathname, prefix+"/") {
		return strings.TrimPrefix(pathname, prefix)
	}
	return pathname
}
