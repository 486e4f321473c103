// Package publish pushes a generated changelog to a GitHub release.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	ghapi "github.com/google/go-github/v72/github"
)

// ErrMissingToken is returned when publishing without GitHub credentials.
var ErrMissingToken = errors.New("missing GitHub token")

// GitHub publishes releases to a single repository.
type GitHub struct {
	client       *ghapi.Client
	organization string
	repository   string
}

// NewGitHub returns a publisher for the given repository.
func NewGitHub(organization string, repository string, token string) (*GitHub, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	return &GitHub{
		client:       ghapi.NewClient(nil).WithAuthToken(token),
		organization: organization,
		repository:   repository,
	}, nil
}

// Publish creates the release for the tag, or updates its notes if it already exists.
// It returns the URL of the release.
func (g *GitHub) Publish(ctx context.Context, tag string, title string, body string) (string, error) {
	release, _, err := g.client.Repositories.GetReleaseByTag(ctx, g.organization, g.repository, tag)
	if err != nil && !isNotFound(err) {
		return "", err
	}

	if release == nil {
		slog.InfoContext(ctx, "Creating release", "repository", g.organization+"/"+g.repository, "tag", tag)

		release, _, err = g.client.Repositories.CreateRelease(ctx, g.organization, g.repository, &ghapi.RepositoryRelease{
			TagName: ghapi.Ptr(tag),
			Name:    ghapi.Ptr(title),
			Body:    ghapi.Ptr(body),
		})
		if err != nil {
			return "", err
		}

		return release.GetHTMLURL(), nil
	}

	slog.InfoContext(ctx, "Updating release", "repository", g.organization+"/"+g.repository, "tag", tag, "id", release.GetID())

	release, _, err = g.client.Repositories.EditRelease(ctx, g.organization, g.repository, release.GetID(), &ghapi.RepositoryRelease{
		Name: ghapi.Ptr(title),
		Body: ghapi.Ptr(body),
	})
	if err != nil {
		return "", err
	}

	return release.GetHTMLURL(), nil
}

func isNotFound(err error) bool {
	var ghErr *ghapi.ErrorResponse

	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
