// Package changelog contains the structured representation of a generated changelog.
package changelog

// Changelog represents the package changes between two consecutive tags of an image stream.
type Changelog struct {
	Image          string           `json:"image"                    yaml:"image"`
	Stream         string           `json:"stream"                   yaml:"stream"`
	CurrentVersion string           `json:"current_version"          yaml:"current_version"`
	PriorVersion   string           `json:"prior_version"            yaml:"prior_version"`
	MajorPackages  []MajorPackage   `json:"major_packages,omitempty" yaml:"major_packages,omitempty"`
	Packages       ChangelogEntries `json:"packages"                 yaml:"packages"`
}

// ChangelogEntries lists packages added, updated, or removed between two tags.
type ChangelogEntries struct {
	Added   []string `json:"added,omitempty"   yaml:"added,omitempty"`
	Updated []string `json:"updated,omitempty" yaml:"updated,omitempty"`
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// MajorPackage is the state of a curated package in the current image.
type MajorPackage struct {
	Name         string `json:"name"                    yaml:"name"`
	Label        string `json:"label"                   yaml:"label"`
	Version      string `json:"version"                 yaml:"version"`
	PriorVersion string `json:"prior_version,omitempty" yaml:"prior_version,omitempty"`
}
