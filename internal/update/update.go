// Package update checks whether a newer agritech release has been published.
package update

import (
	"context"
	"strings"
	"time"

	"github.com/Godzilla108108/agritech/internal/fetch"
)

const ReleasesURL = "https://api.github.com/repos/Godzilla108108/agritech/releases/latest"

const checkTimeout = 5 * time.Second

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Check asks url for the latest release. It returns nil when the current
// version is up to date or the check fails; a failed check is never fatal.
func Check(ctx context.Context, fc *fetch.Client, url, currentVersion string) *Result {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var release ghRelease
	if err := fc.GetJSON(ctx, "release", url, &release); err != nil {
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")
	if latest == "" || latest == current {
		return nil
	}
	return &Result{LatestVersion: latest}
}
