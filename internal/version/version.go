// Package version holds the build version and checks GitHub for newer
// releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	// GitHubAPIURL is the endpoint for fetching the latest release
	GitHubAPIURL = "https://api.github.com/repos/surge-downloader/mktorrent/releases/latest"
	// RequestTimeout is the timeout for the GitHub API request
	RequestTimeout = 10 * time.Second
)

// CreatedBy is the value of the "created by" metainfo key.
func CreatedBy() string {
	return "mktorrent v" + normalizeVersion(Version)
}

// UpdateInfo contains information about an available update
type UpdateInfo struct {
	CurrentVersion  string // The running version
	LatestVersion   string // The latest version available on GitHub
	ReleaseURL      string // URL to the GitHub release page
	UpdateAvailable bool   // Whether an update is available
}

// GitHubRelease represents the relevant fields from the GitHub API response
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdate asks apiURL (GitHubAPIURL when empty) for the latest
// release. Development builds are never checked and return nil, nil.
func CheckForUpdate(ctx context.Context, currentVersion, apiURL string) (*UpdateInfo, error) {
	if currentVersion == "dev" || currentVersion == "" {
		return nil, nil
	}
	if apiURL == "" {
		apiURL = GitHubAPIURL
	}

	client := &http.Client{
		Timeout: RequestTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}

	// Set User-Agent as required by GitHub API
	req.Header.Set("User-Agent", "mktorrent-update-checker")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("update check failed: %s", resp.Status)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("update check failed: %w", err)
	}

	latestVersion := normalizeVersion(release.TagName)
	currentNormalized := normalizeVersion(currentVersion)

	return &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.TagName,
		ReleaseURL:      release.HTMLURL,
		UpdateAvailable: isNewerVersion(latestVersion, currentNormalized),
	}, nil
}

// normalizeVersion removes the 'v' prefix and trims whitespace
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "v")
	return version
}

// isNewerVersion compares two semver strings and returns true if latest > current
// Assumes format: MAJOR.MINOR.PATCH (e.g., "1.2.3")
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	for i := 0; i < 3; i++ {
		if latestParts[i] > currentParts[i] {
			return true
		}
		if latestParts[i] < currentParts[i] {
			return false
		}
	}
	return false
}

// parseVersion parses a semver string into [major, minor, patch]
func parseVersion(version string) [3]int {
	var parts [3]int

	segments := strings.Split(version, ".")
	for i := 0; i < len(segments) && i < 3; i++ {
		// Parse the numeric part (ignore any suffix like "-beta")
		numStr := segments[i]
		if idx := strings.IndexAny(numStr, "-+"); idx != -1 {
			numStr = numStr[:idx]
		}
		_, _ = fmt.Sscanf(numStr, "%d", &parts[i])
	}

	return parts
}
