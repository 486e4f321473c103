package manifests

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultPackagesLabel is the image label written by rechunk holding the package list.
const DefaultPackagesLabel = "dev.hhd.rechunk.info"

// ErrMissingMetadata is returned when an image doesn't carry the expected package metadata.
var ErrMissingMetadata = errors.New("missing package metadata")

var fedoraPattern = regexp.MustCompile(`\.fc\d\d`)

// Manifest represents the json document produced by "skopeo inspect".
type Manifest struct {
	Name         string            `json:"Name"`
	Digest       string            `json:"Digest"`
	RepoTags     []string          `json:"RepoTags"`
	Created      time.Time         `json:"Created"`
	Architecture string            `json:"Architecture"`
	Os           string            `json:"Os"`
	Labels       map[string]string `json:"Labels"`
	LayersData   []LayerData       `json:"LayersData"`
}

// LayerData represents a single layer of an inspected image.
type LayerData struct {
	MIMEType    string            `json:"MIMEType"`
	Digest      string            `json:"Digest"`
	Size        int64             `json:"Size"`
	Annotations map[string]string `json:"Annotations,omitempty"`
}

// VersionMap maps a package name to its version.
type VersionMap map[string]string

// rechunkInfo is the json content of the rechunk label. Only the package list is of interest.
type rechunkInfo struct {
	Packages map[string]string `json:"packages"`
}

// ExtractVersions returns the normalized package versions recorded in the given label of the manifest.
func ExtractVersions(m *Manifest, label string) (VersionMap, error) {
	raw, ok := m.Labels[label]
	if !ok {
		return nil, fmt.Errorf("%w: image %q has no %q label", ErrMissingMetadata, m.Name, label)
	}

	var info rechunkInfo

	err := json.Unmarshal([]byte(raw), &info)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %q label on image %q: %w", ErrMissingMetadata, label, m.Name, err)
	}

	if info.Packages == nil {
		return nil, fmt.Errorf("%w: %q label on image %q has no packages", ErrMissingMetadata, label, m.Name)
	}

	ret := make(VersionMap, len(info.Packages))
	for name, version := range info.Packages {
		ret[name] = StripFedoraSuffix(version)
	}

	return ret, nil
}

// StripFedoraSuffix removes any Fedora release marker (".fcNN") from a package version.
func StripFedoraSuffix(version string) string {
	return fedoraPattern.ReplaceAllString(version, "")
}
