package manifests

import (
	"slices"

	"github.com/scylladb/go-set/strset"

	apichangelog "github.com/lxc/image-changelog/api/changelog"
)

// Diff lists the names of packages added, changed, or removed between two images.
type Diff struct {
	Added   []string
	Changed []string
	Removed []string
}

// Empty returns true if no package changed.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// DiffVersions compares the package versions of two images, skipping any ignored package.
// Package names are processed in sorted order so the result is stable.
func DiffVersions(current VersionMap, previous VersionMap, ignore []string) Diff {
	ret := Diff{
		Added:   []string{},
		Changed: []string{},
		Removed: []string{},
	}

	ignored := strset.New(ignore...)

	universe := strset.New()
	for name := range current {
		universe.Add(name)
	}

	for name := range previous {
		universe.Add(name)
	}

	names := universe.List()
	slices.Sort(names)

	for _, name := range names {
		if ignored.Has(name) {
			continue
		}

		currentVersion, inCurrent := current[name]
		previousVersion, inPrevious := previous[name]

		switch {
		case !inPrevious:
			ret.Added = append(ret.Added, name)
		case !inCurrent:
			ret.Removed = append(ret.Removed, name)
		case previousVersion != currentVersion:
			ret.Changed = append(ret.Changed, name)
		}
	}

	return ret
}

// Entries turns the diff into human readable changelog entries.
func (d Diff) Entries(current VersionMap, previous VersionMap) apichangelog.ChangelogEntries {
	var ret apichangelog.ChangelogEntries

	for _, name := range d.Added {
		ret.Added = append(ret.Added, name+" version "+current[name])
	}

	for _, name := range d.Changed {
		ret.Updated = append(ret.Updated, name+" version "+previous[name]+" to version "+current[name])
	}

	for _, name := range d.Removed {
		ret.Removed = append(ret.Removed, name+" version "+previous[name])
	}

	return ret
}
