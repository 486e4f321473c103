package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lxc/image-changelog/internal/config"
)

var goldConfig = `namespace: ublue-os
retries: 5
retry_wait: 10s
important_packages:
  - name: kernel
    label: Kernel
  - name: plasma-desktop
    label: KDE
ignored_packages:
  - kernel-devel
github:
  repository: bazzite
`

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte(goldConfig), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "docker://ghcr.io", cfg.Registry)
	require.Equal(t, "ublue-os", cfg.Namespace)
	require.Equal(t, 5, cfg.Retries)
	require.Equal(t, 10*time.Second, cfg.RetryWait)
	require.Equal(t, []config.ImportantPackage{{Name: "kernel", Label: "Kernel"}, {Name: "plasma-desktop", Label: "KDE"}}, cfg.ImportantPackages)
	require.Equal(t, []string{"kernel-devel"}, cfg.IgnoredPackages)
	require.Equal(t, "slaclau", cfg.GitHub.Organization)
	require.Equal(t, "bazzite", cfg.GitHub.Repository)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) { //nolint:paralleltest
	t.Setenv("IMAGE_CHANGELOG_NAMESPACE", "ublue-os")
	t.Setenv("IMAGE_CHANGELOG_RETRIES", "7")
	t.Setenv("IMAGE_CHANGELOG_RETRY_WAIT", "250ms")
	t.Setenv("IMAGE_CHANGELOG_GITHUB_ORGANIZATION", "ublue-os")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "ublue-os", cfg.Namespace)
	require.Equal(t, 7, cfg.Retries)
	require.Equal(t, 250*time.Millisecond, cfg.RetryWait)
	require.Equal(t, "ublue-os", cfg.GitHub.Organization)
	require.Equal(t, "silverblue-tweaks", cfg.GitHub.Repository)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{
			name:   "Empty registry",
			mutate: func(c *config.Config) { c.Registry = "" },
		},
		{
			name:   "Empty namespace",
			mutate: func(c *config.Config) { c.Namespace = "" },
		},
		{
			name:   "No retries",
			mutate: func(c *config.Config) { c.Retries = 0 },
		},
		{
			name:   "Negative wait",
			mutate: func(c *config.Config) { c.RetryWait = -time.Second },
		},
		{
			name:   "Empty label",
			mutate: func(c *config.Config) { c.Label = "" },
		},
		{
			name:   "Important package without label",
			mutate: func(c *config.Config) { c.ImportantPackages = append(c.ImportantPackages, config.ImportantPackage{Name: "podman"}) },
		},
	}

	require.NoError(t, config.Default().Validate())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tc.mutate(cfg)

			require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}
