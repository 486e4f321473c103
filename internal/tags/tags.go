// Package tags picks the image tags to compare within a release stream.
package tags

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/fvbommel/sortorder"
)

// ErrInsufficientTags is returned when a stream doesn't have two numbered tags to compare.
var ErrInsufficientTags = errors.New("not enough tags to compare")

// Filter returns the tags of the form "<stream>-<number>", keeping their input order.
func Filter(tags []string, stream string) []string {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(stream) + "-[0-9]+")

	ret := []string{}

	for _, tag := range tags {
		if pattern.MatchString(tag) {
			ret = append(ret, tag)
		}
	}

	return ret
}

// SelectPair returns the two most recent tags of the stream as (previous, current).
//
// Tags are compared in natural order so that "beta-10" comes after "beta-9".
func SelectPair(tags []string, stream string) (string, string, error) {
	matches := Filter(tags, stream)
	if len(matches) < 2 {
		return "", "", fmt.Errorf("%w: found %d tag(s) for stream %q", ErrInsufficientTags, len(matches), stream)
	}

	sort.Sort(sortorder.Natural(matches))

	return matches[len(matches)-2], matches[len(matches)-1], nil
}
