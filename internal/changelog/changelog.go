// Package changelog generates the changelog between the two latest tags of an image stream.
package changelog

import (
	"context"
	"log/slog"

	apichangelog "github.com/lxc/image-changelog/api/changelog"
	"github.com/lxc/image-changelog/internal/config"
	"github.com/lxc/image-changelog/internal/manifests"
	"github.com/lxc/image-changelog/internal/render"
	"github.com/lxc/image-changelog/internal/tags"
)

// Fetcher retrieves the manifest of an image reference such as "name:tag".
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (*manifests.Manifest, error)
}

// Result holds a generated changelog.
type Result struct {
	Image    string
	Stream   string
	Previous string
	Current  string

	Diff      manifests.Diff
	Markdown  string
	Changelog apichangelog.Changelog
}

// Generate compares the two most recent tags of the image stream.
func Generate(ctx context.Context, f Fetcher, cfg *config.Config, image string, stream string) (*Result, error) {
	// Get the list of tags.
	streamManifest, err := f.Fetch(ctx, image+":"+stream)
	if err != nil {
		return nil, err
	}

	previous, current, err := tags.SelectPair(streamManifest.RepoTags, stream)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Comparing tags", "image", image, "previous", previous, "current", current)

	// Get the package lists.
	previousManifest, err := f.Fetch(ctx, image+":"+previous)
	if err != nil {
		return nil, err
	}

	currentManifest, err := f.Fetch(ctx, image+":"+current)
	if err != nil {
		return nil, err
	}

	previousVersions, err := manifests.ExtractVersions(previousManifest, cfg.Label)
	if err != nil {
		return nil, err
	}

	currentVersions, err := manifests.ExtractVersions(currentManifest, cfg.Label)
	if err != nil {
		return nil, err
	}

	diff := manifests.DiffVersions(currentVersions, previousVersions, cfg.IgnoredPackages)

	slog.InfoContext(ctx, "Computed package changes", "added", len(diff.Added), "changed", len(diff.Changed), "removed", len(diff.Removed))

	header := render.Header(image, current, previous)

	return &Result{
		Image:    image,
		Stream:   stream,
		Previous: previous,
		Current:  current,
		Diff:     diff,
		Markdown: render.Markdown(diff, currentVersions, previousVersions, header, cfg.ImportantPackages),
		Changelog: apichangelog.Changelog{
			Image:          image,
			Stream:         stream,
			CurrentVersion: current,
			PriorVersion:   previous,
			MajorPackages:  majorPackages(currentVersions, previousVersions, cfg.ImportantPackages),
			Packages:       diff.Entries(currentVersions, previousVersions),
		},
	}, nil
}

func majorPackages(current manifests.VersionMap, previous manifests.VersionMap, important []config.ImportantPackage) []apichangelog.MajorPackage {
	ret := []apichangelog.MajorPackage{}

	for _, p := range important {
		version, ok := current[p.Name]
		if !ok {
			continue
		}

		major := apichangelog.MajorPackage{
			Name:    p.Name,
			Label:   p.Label,
			Version: version,
		}

		prev, ok := previous[p.Name]
		if ok && prev != version {
			major.PriorVersion = prev
		}

		ret = append(ret, major)
	}

	return ret
}
