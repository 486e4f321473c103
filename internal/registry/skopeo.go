// Package registry retrieves image metadata from a container registry.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lxc/incus/v6/shared/subprocess"

	"github.com/lxc/image-changelog/internal/config"
	"github.com/lxc/image-changelog/internal/manifests"
)

// ErrFetch is returned when an image couldn't be inspected after all attempts.
var ErrFetch = errors.New("failed to fetch image manifest")

type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// Skopeo inspects images through the "skopeo" command line tool.
type Skopeo struct {
	registry  string
	namespace string
	retries   int
	retryWait time.Duration

	run runFunc
}

// NewSkopeo returns a Skopeo fetcher for the registry and namespace of the configuration.
func NewSkopeo(cfg *config.Config) *Skopeo {
	return &Skopeo{
		registry:  cfg.Registry,
		namespace: cfg.Namespace,
		retries:   cfg.Retries,
		retryWait: cfg.RetryWait,
		run:       subprocess.RunCommandContext,
	}
}

// Target returns the full transport reference for an image reference such as "name:tag".
func (s *Skopeo) Target(ref string) string {
	return s.registry + "/" + s.namespace + "/" + ref
}

// Fetch inspects the image, retrying on failure.
func (s *Skopeo) Fetch(ctx context.Context, ref string) (*manifests.Manifest, error) {
	target := s.Target(ref)
	retries := max(s.retries, 1)

	slog.InfoContext(ctx, "Getting image manifest", "image", target)

	var lastErr error

	for attempt := 1; attempt <= retries; attempt++ {
		m, err := s.inspect(ctx, target)
		if err == nil {
			slog.DebugContext(ctx, "Got image manifest", "image", target, "digest", m.Digest, "tags", len(m.RepoTags), "layers", len(m.LayersData))

			return m, nil
		}

		lastErr = err

		if attempt == retries {
			slog.WarnContext(ctx, "Failed to get image manifest", "image", target, "attempt", attempt, "retries", retries, "err", err)

			break
		}

		slog.WarnContext(ctx, "Failed to get image manifest, retrying", "image", target, "attempt", attempt, "retries", retries, "wait", s.retryWait, "err", err)

		timer := time.NewTimer(s.retryWait)

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w %q after %d attempt(s): %w", ErrFetch, target, retries, lastErr)
}

func (s *Skopeo) inspect(ctx context.Context, target string) (*manifests.Manifest, error) {
	output, err := s.run(ctx, "skopeo", "inspect", target)
	if err != nil {
		return nil, err
	}

	var m manifests.Manifest

	err = json.Unmarshal([]byte(output), &m)
	if err != nil {
		return nil, fmt.Errorf("invalid skopeo output: %w", err)
	}

	return &m, nil
}
