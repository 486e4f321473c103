// Package main is used for the image changelog generator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/lxc/incus/v6/shared/cmd"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lxc/image-changelog/internal/changelog"
	"github.com/lxc/image-changelog/internal/config"
	"github.com/lxc/image-changelog/internal/output"
	"github.com/lxc/image-changelog/internal/publish"
	"github.com/lxc/image-changelog/internal/registry"
)

var version = "dev"

type cmdGlobal struct {
	flagHelp    bool
	flagVersion bool
	flagDebug   bool
	flagConfig  string
	flagOutput  string
	flagYAML    bool
	flagPublish bool
}

func main() {
	// Global flags.
	globalCmd := cmdGlobal{}

	app := &cobra.Command{
		Use:   "image-changelog <image> <stream>",
		Short: "Generate a package changelog for an image stream",
		Long: cli.FormatSection("Description",
			`Generate a package changelog for an image stream

This tool looks up the two most recent "<stream>-<number>" tags of an image,
compares the packages recorded in their metadata and writes the differences
as a markdown table to changelog.md, along with changelog.env holding the
tag that was described.`),
		Example: cli.FormatSection("", `image-changelog silverblue-tweaks stable
    Describe the latest "stable" build of silverblue-tweaks.

image-changelog --publish --yaml silverblue-tweaks beta
    Also write changelog.yaml and publish the notes as a GitHub release.`),
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE:              globalCmd.run,
	}

	app.PersistentFlags().BoolVarP(&globalCmd.flagHelp, "help", "h", false, "Print help command")
	app.PersistentFlags().BoolVarP(&globalCmd.flagVersion, "version", "v", false, "Print binary version")
	app.PersistentFlags().BoolVarP(&globalCmd.flagDebug, "debug", "d", false, "Show all debug messages")

	app.Flags().StringVarP(&globalCmd.flagConfig, "config", "c", "", "Path to a YAML configuration file``")
	app.Flags().StringVarP(&globalCmd.flagOutput, "output", "o", ".", "Directory to write the changelog files to``")
	app.Flags().BoolVar(&globalCmd.flagYAML, "yaml", false, "Also write a structured changelog.yaml")
	app.Flags().BoolVar(&globalCmd.flagPublish, "publish", false, "Publish the changelog as a GitHub release (requires GH_TOKEN)")

	// Help handling.
	app.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	// Run the main command and handle errors.
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func (c *cmdGlobal) run(cmd *cobra.Command, args []string) error {
	if c.flagVersion {
		_, _ = fmt.Println("image-changelog version " + version) //nolint:forbidigo

		return nil
	}

	// Quick checks.
	exit, err := cli.CheckArgs(cmd, args, 2, 2)
	if exit {
		return err
	}

	if c.flagDebug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx := context.Background()

	image := args[0]
	stream := args[1]

	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		return err
	}

	// Generate the changelog.
	result, err := changelog.Generate(ctx, registry.NewSkopeo(cfg), cfg, image, stream)
	if err != nil {
		return err
	}

	err = output.Write(afero.NewOsFs(), c.flagOutput, result, output.Options{YAML: c.flagYAML})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Wrote changelog", "path", c.flagOutput, "tag", result.Current)

	if !c.flagPublish {
		return nil
	}

	// Publish the release notes.
	gh, err := publish.NewGitHub(cfg.GitHub.Organization, cfg.GitHub.Repository, os.Getenv("GH_TOKEN"))
	if err != nil {
		return err
	}

	releaseURL, err := gh.Publish(ctx, result.Current, image+" "+result.Current, result.Markdown)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published release", "url", releaseURL)

	return nil
}
