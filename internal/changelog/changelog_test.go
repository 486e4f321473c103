package changelog_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	apichangelog "github.com/lxc/image-changelog/api/changelog"
	"github.com/lxc/image-changelog/internal/changelog"
	"github.com/lxc/image-changelog/internal/config"
	"github.com/lxc/image-changelog/internal/manifests"
	"github.com/lxc/image-changelog/internal/tags"
)

type fakeFetcher struct {
	images  map[string]*manifests.Manifest
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, ref string) (*manifests.Manifest, error) {
	f.fetched = append(f.fetched, ref)

	m, ok := f.images[ref]
	if !ok {
		return nil, fmt.Errorf("no such image %q", ref)
	}

	return m, nil
}

func packagesManifest(t *testing.T, packages map[string]string) *manifests.Manifest {
	t.Helper()

	content, err := json.Marshal(map[string]any{"packages": packages})
	require.NoError(t, err)

	return &manifests.Manifest{Labels: map[string]string{manifests.DefaultPackagesLabel: string(content)}}
}

func newFetcher(t *testing.T) *fakeFetcher {
	t.Helper()

	return &fakeFetcher{
		images: map[string]*manifests.Manifest{
			"silverblue-tweaks:stable": {RepoTags: []string{"stable", "stable-9", "stable-10", "stable-8", "beta-11"}},
			"silverblue-tweaks:stable-9": packagesManifest(t, map[string]string{
				"kernel": "6.10.12-200.fc40", "podman": "5.2.3-1.fc40", "b": "1.9", "d": "0.1", "kernel-core": "6.10.12-200.fc40",
			}),
			"silverblue-tweaks:stable-10": packagesManifest(t, map[string]string{
				"kernel": "6.11.3-200.fc40", "podman": "5.2.3-1.fc40", "b": "2.0", "c": "3.0", "kernel-core": "6.11.3-200.fc40",
			}),
		},
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	f := newFetcher(t)

	result, err := changelog.Generate(t.Context(), f, config.Default(), "silverblue-tweaks", "stable")
	require.NoError(t, err)

	require.Equal(t, []string{"silverblue-tweaks:stable", "silverblue-tweaks:stable-9", "silverblue-tweaks:stable-10"}, f.fetched)
	require.Equal(t, "stable-9", result.Previous)
	require.Equal(t, "stable-10", result.Current)

	require.Equal(t, []string{"c"}, result.Diff.Added)
	require.Equal(t, []string{"b", "kernel"}, result.Diff.Changed)
	require.Equal(t, []string{"d"}, result.Diff.Removed)

	require.Contains(t, result.Markdown, "# silverblue-tweaks (stable-10)\n")
	require.Contains(t, result.Markdown, "\n| Kernel | 6.10.12-200 ➡️ 6.11.3-200\n")
	require.Contains(t, result.Markdown, "\n| Podman | 5.2.3-1 |\n")
	require.NotContains(t, result.Markdown, "kernel-core")

	require.Equal(t, apichangelog.Changelog{
		Image:          "silverblue-tweaks",
		Stream:         "stable",
		CurrentVersion: "stable-10",
		PriorVersion:   "stable-9",
		MajorPackages: []apichangelog.MajorPackage{
			{Name: "kernel", Label: "Kernel", Version: "6.11.3-200", PriorVersion: "6.10.12-200"},
			{Name: "podman", Label: "Podman", Version: "5.2.3-1"},
		},
		Packages: apichangelog.ChangelogEntries{
			Added:   []string{"c version 3.0"},
			Updated: []string{"b version 1.9 to version 2.0", "kernel version 6.10.12-200 to version 6.11.3-200"},
			Removed: []string{"d version 0.1"},
		},
	}, result.Changelog)
}

func TestGenerateInsufficientTags(t *testing.T) {
	t.Parallel()

	f := newFetcher(t)

	_, err := changelog.Generate(t.Context(), f, config.Default(), "silverblue-tweaks", "beta")
	require.Error(t, err)

	f.images["silverblue-tweaks:beta"] = &manifests.Manifest{RepoTags: []string{"beta-11"}}

	_, err = changelog.Generate(t.Context(), f, config.Default(), "silverblue-tweaks", "beta")
	require.ErrorIs(t, err, tags.ErrInsufficientTags)
}

func TestGenerateMissingMetadata(t *testing.T) {
	t.Parallel()

	f := newFetcher(t)
	f.images["silverblue-tweaks:stable-9"] = &manifests.Manifest{}

	_, err := changelog.Generate(t.Context(), f, config.Default(), "silverblue-tweaks", "stable")
	require.ErrorIs(t, err, manifests.ErrMissingMetadata)
}

func TestGenerateFetchError(t *testing.T) {
	t.Parallel()

	f := newFetcher(t)
	delete(f.images, "silverblue-tweaks:stable-10")

	_, err := changelog.Generate(t.Context(), f, config.Default(), "silverblue-tweaks", "stable")
	require.Error(t, err)
	require.False(t, errors.Is(err, manifests.ErrMissingMetadata))
}
