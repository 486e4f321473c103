// Package render turns a package diff into a markdown changelog.
package render

import (
	"strings"

	"github.com/lxc/image-changelog/internal/config"
	"github.com/lxc/image-changelog/internal/manifests"
)

const (
	majorHeader    = "\n### Major packages\n| Name | Version |\n| --- | --- |"
	packagesHeader = "\n\n### All packages\n| | Name | Previous | New |\n| --- | --- | --- | --- |"
)

// Header returns the title of the changelog for the given image and tags.
func Header(image string, current string, previous string) string {
	return "# " + image + " (" + current + ")\nThere have been the following changes since previous version (" + previous + "):\n"
}

// Markdown renders the major packages table followed, if anything changed, by the full package table.
func Markdown(diff manifests.Diff, current manifests.VersionMap, previous manifests.VersionMap, header string, important []config.ImportantPackage) string {
	var out strings.Builder

	_, _ = out.WriteString(header)

	// Major packages, shown whether they changed or not.
	_, _ = out.WriteString(majorHeader)

	for _, p := range important {
		version, ok := current[p.Name]
		if !ok {
			continue
		}

		prev, ok := previous[p.Name]
		if ok && prev != version {
			_, _ = out.WriteString("\n| " + p.Label + " | " + prev + " ➡️ " + version)
		} else {
			_, _ = out.WriteString("\n| " + p.Label + " | " + version + " |")
		}
	}

	if !diff.Empty() {
		_, _ = out.WriteString(packagesHeader)

		for _, name := range diff.Added {
			_, _ = out.WriteString("\n| ✨ | " + name + " | | " + current[name] + " |")
		}

		for _, name := range diff.Changed {
			_, _ = out.WriteString("\n| 🔄 | " + name + " | " + previous[name] + " | " + current[name] + " |")
		}

		for _, name := range diff.Removed {
			_, _ = out.WriteString("\n| ❌ | " + name + " | " + previous[name] + " | |")
		}
	}

	_, _ = out.WriteString("\n")

	return out.String()
}
