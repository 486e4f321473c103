// Package config handles the deployment policy of the changelog generator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/lxc/image-changelog/internal/manifests"
)

// EnvPrefix is the prefix of environment variables overriding the configuration.
const EnvPrefix = "IMAGE_CHANGELOG_"

// ErrInvalidConfig is returned when the loaded configuration can't be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the registry location and package policy used to build a changelog.
type Config struct {
	Registry          string             `koanf:"registry"           yaml:"registry"`
	Namespace         string             `koanf:"namespace"          yaml:"namespace"`
	Retries           int                `koanf:"retries"            yaml:"retries"`
	RetryWait         time.Duration      `koanf:"retry_wait"         yaml:"retry_wait"`
	Label             string             `koanf:"label"              yaml:"label"`
	ImportantPackages []ImportantPackage `koanf:"important_packages" yaml:"important_packages"`
	IgnoredPackages   []string           `koanf:"ignored_packages"   yaml:"ignored_packages"`
	GitHub            GitHub             `koanf:"github"             yaml:"github"`
}

// ImportantPackage is a package surfaced in the major packages table under a friendly label.
type ImportantPackage struct {
	Name  string `koanf:"name"  yaml:"name"`
	Label string `koanf:"label" yaml:"label"`
}

// GitHub holds the repository that releases get published to.
type GitHub struct {
	Organization string `koanf:"organization" yaml:"organization"`
	Repository   string `koanf:"repository"   yaml:"repository"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Registry:  "docker://ghcr.io",
		Namespace: "slaclau",
		Retries:   3,
		RetryWait: 5 * time.Second,
		Label:     manifests.DefaultPackagesLabel,
		ImportantPackages: []ImportantPackage{
			{Name: "kernel", Label: "Kernel"},
			{Name: "gnome-shell", Label: "Gnome"},
			{Name: "mesa-filesystem", Label: "Mesa"},
			{Name: "podman", Label: "Podman"},
			{Name: "hhd", Label: "HHD"},
			{Name: "distrobox", Label: "Distrobox"},
		},
		IgnoredPackages: []string{
			"kernel-core",
			"kernel-modules",
			"kernel-modules-core",
			"kernel-modules-extra",
		},
		GitHub: GitHub{
			Organization: "slaclau",
			Repository:   "silverblue-tweaks",
		},
	}
}

// Load builds the configuration from the defaults, an optional YAML file and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(structs.Provider(Default(), "koanf"), nil)
	if err != nil {
		return nil, err
	}

	if path != "" {
		err = k.Load(file.Provider(path), yaml.Parser())
		if err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", path, err)
		}
	}

	err = k.Load(env.Provider(EnvPrefix, ".", envTransform), nil)
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Registry == "" {
		return fmt.Errorf("%w: registry can't be empty", ErrInvalidConfig)
	}

	if c.Namespace == "" {
		return fmt.Errorf("%w: namespace can't be empty", ErrInvalidConfig)
	}

	if c.Retries < 1 {
		return fmt.Errorf("%w: retries must be at least 1, got %d", ErrInvalidConfig, c.Retries)
	}

	if c.RetryWait < 0 {
		return fmt.Errorf("%w: retry_wait can't be negative", ErrInvalidConfig)
	}

	if c.Label == "" {
		return fmt.Errorf("%w: label can't be empty", ErrInvalidConfig)
	}

	for _, p := range c.ImportantPackages {
		if p.Name == "" || p.Label == "" {
			return fmt.Errorf("%w: important packages need both a name and a label", ErrInvalidConfig)
		}
	}

	return nil
}

// envTransform maps IMAGE_CHANGELOG_RETRY_WAIT to retry_wait and IMAGE_CHANGELOG_GITHUB_ORGANIZATION to github.organization.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	after, found := strings.CutPrefix(key, "github_")
	if found {
		return "github." + after
	}

	return key
}
