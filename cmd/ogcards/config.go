package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-scripts/ogcards/internal/browser"
	"github.com/go-scripts/ogcards/internal/generator"
)

const defaultConfigPath = "ogcards.yaml"

// Configuration holds the settings of one run, from file and flags
type Configuration struct {
	OutDir       string        `yaml:"out_dir"`
	Routes       string        `yaml:"routes"`
	Template     string        `yaml:"template"`
	ContentExt   string        `yaml:"content_ext"`
	PathPrefix   string        `yaml:"path_prefix"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	MissingTitle string        `yaml:"missing_title"`
	DefaultTitle string        `yaml:"default_title"`
	PageTimeout  time.Duration `yaml:"page_timeout"`
	ChromePath   string        `yaml:"chrome_path"`
}

// loadConfig reads the YAML configuration file. A missing file at the
// default location yields an empty configuration.
func loadConfig(path string) (*Configuration, error) {
	cfg := &Configuration{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// override copies every flag that was given onto the configuration.
func (c *Configuration) override(f RunFlags) {
	if f.OutDir != "" {
		c.OutDir = f.OutDir
	}
	if f.Routes != "" {
		c.Routes = f.Routes
	}
	if f.Template != "" {
		c.Template = f.Template
	}
	if f.ContentExt != "" {
		c.ContentExt = f.ContentExt
	}
	if f.PathPrefix != "" {
		c.PathPrefix = f.PathPrefix
	}
	if f.Width != 0 {
		c.Width = f.Width
	}
	if f.Height != 0 {
		c.Height = f.Height
	}
	if f.MissingTitle != "" {
		c.MissingTitle = f.MissingTitle
	}
	if f.DefaultTitle != "" {
		c.DefaultTitle = f.DefaultTitle
	}
	if f.PageTimeout != 0 {
		c.PageTimeout = f.PageTimeout
	}
	if f.ChromePath != "" {
		c.ChromePath = f.ChromePath
	}
}

func (c *Configuration) validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("out dir is required")
	}
	if c.Routes == "" {
		return fmt.Errorf("route manifest is required")
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height)
	}
	if c.MissingTitle == string(generator.MissingTitleDefault) && c.DefaultTitle == "" {
		return fmt.Errorf("missing_title %q needs a default title", c.MissingTitle)
	}
	_, err := generator.ParseMissingTitle(c.MissingTitle)
	return err
}

func (c *Configuration) generatorConfig() generator.Config {
	policy, _ := generator.ParseMissingTitle(c.MissingTitle)
	return generator.Config{
		OutDir:       c.OutDir,
		TemplatePath: c.Template,
		ContentExt:   c.ContentExt,
		PathPrefix:   c.PathPrefix,
		Width:        c.Width,
		Height:       c.Height,
		MissingTitle: policy,
		DefaultTitle: c.DefaultTitle,
	}
}

func (c *Configuration) browserOptions() browser.Options {
	return browser.Options{
		ExecPath:    c.ChromePath,
		PageTimeout: c.PageTimeout,
	}
}
