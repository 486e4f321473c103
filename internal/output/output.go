// Package output writes a generated changelog to disk.
package output

import (
	"path/filepath"

	"github.com/lxc/incus/v6/shared/revert"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/lxc/image-changelog/internal/changelog"
)

// Output file names.
const (
	MarkdownFile = "changelog.md"
	EnvFile      = "changelog.env"
	YAMLFile     = "changelog.yaml"
)

// Options controls which optional files get written.
type Options struct {
	YAML bool
}

type outputFile struct {
	name    string
	content []byte
}

// Write stores the changelog files in dir.
//
// All content is rendered before anything touches the filesystem, and on failure every file
// written so far is removed so that no partial changelog is left behind.
func Write(fs afero.Fs, dir string, r *changelog.Result, opts Options) error {
	files := []outputFile{
		{name: MarkdownFile, content: []byte(r.Markdown)},
		{name: EnvFile, content: []byte("TAG=" + r.Current + "\n")},
	}

	if opts.YAML {
		content, err := yaml.Marshal(&r.Changelog)
		if err != nil {
			return err
		}

		files = append(files, outputFile{name: YAMLFile, content: content})
	}

	err := fs.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	reverter := revert.New()
	defer reverter.Fail()

	// Stage every file under a temporary name.
	for _, f := range files {
		tmpPath := filepath.Join(dir, "."+f.name+".tmp")

		reverter.Add(func() { _ = fs.Remove(tmpPath) })

		err := afero.WriteFile(fs, tmpPath, f.content, 0o644)
		if err != nil {
			return err
		}
	}

	// Move them into place.
	for _, f := range files {
		path := filepath.Join(dir, f.name)

		err := fs.Rename(filepath.Join(dir, "."+f.name+".tmp"), path)
		if err != nil {
			return err
		}

		reverter.Add(func() { _ = fs.Remove(path) })
	}

	reverter.Success()

	return nil
}
