// Package trackers prepares the tracker and DHT node lists given on the
// command line: abbreviation expansion, deduplication, validation and the
// "bestN" shortcut that pulls trackers from a published list.
package trackers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/surge-downloader/mktorrent/internal/torrent"
)

const (
	// RequestTimeout bounds the best trackers download.
	RequestTimeout = 10 * time.Second
	// maxListSize caps how much of the best trackers list is read.
	maxListSize = 1 << 20
)

var (
	ErrInvalidTracker = errors.New("invalid tracker URL")
	ErrInvalidNode    = errors.New("invalid DHT bootstrap node")
	ErrBestTrackers   = errors.New("could not download best trackers")
)

var (
	schemePattern = regexp.MustCompile(`(?i)^(http|https|udp)://`)
	bestPattern   = regexp.MustCompile(`(?i)^best([0-9]+)$`)
)

// Expand replaces every item that names an abbreviation with its URLs.
// Lookup is case-insensitive; abbreviation keys must be lowercase.
func Expand(list []string, abbreviations map[string][]string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if urls, ok := abbreviations[strings.ToLower(item)]; ok {
			out = append(out, urls...)
			continue
		}
		out = append(out, item)
	}
	return out
}

// Dedupe drops repeated entries, keeping the first occurrence.
func Dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// BestCount reports whether s is a "bestN" shortcut and returns N.
func BestCount(s string) (int, bool) {
	m := bestPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate accepts http, https and udp tracker URLs and bestN shortcuts.
func Validate(raw string) error {
	if _, ok := BestCount(raw); ok {
		return nil
	}
	if !schemePattern.MatchString(raw) {
		return fmt.Errorf("%w: %s", ErrInvalidTracker, raw)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidTracker, raw)
	}
	return nil
}

// ValidateAll returns the entries of list that fail Validate.
func ValidateAll(list []string) []string {
	var invalid []string
	for _, t := range list {
		if Validate(t) != nil {
			invalid = append(invalid, t)
		}
	}
	return invalid
}

// HasBest reports whether list contains a bestN shortcut.
func HasBest(list []string) bool {
	for _, t := range list {
		if _, ok := BestCount(t); ok {
			return true
		}
	}
	return false
}

// ResolveBest replaces each bestN shortcut with the first N trackers of the
// list published at listURL. The list is downloaded at most once. Trackers
// that appear twice after expansion are dropped.
func ResolveBest(ctx context.Context, list []string, listURL string, client *http.Client) ([]string, error) {
	if !HasBest(list) {
		return list, nil
	}
	var best []string
	fetched := false

	out := make([]string, 0, len(list))
	for _, t := range list {
		n, ok := BestCount(t)
		if !ok {
			out = append(out, t)
			continue
		}
		if n == 0 {
			continue
		}
		if !fetched {
			var err error
			best, err = FetchBest(ctx, listURL, client)
			if err != nil {
				return nil, err
			}
			fetched = true
		}
		out = append(out, best[:min(n, len(best))]...)
	}
	return Dedupe(out), nil
}

// FetchBest downloads a newline separated tracker list and returns its
// non-empty lines.
func FetchBest(ctx context.Context, listURL string, client *http.Client) ([]string, error) {
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrBestTrackers, listURL, err)
	}
	req.Header.Set("User-Agent", "mktorrent")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrBestTrackers, listURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w from %s: %s", ErrBestTrackers, listURL, resp.Status)
	}

	var lines []string
	scanner := bufio.NewScanner(io.LimitReader(resp.Body, maxListSize))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrBestTrackers, listURL, err)
	}
	return lines, nil
}

// ParseNode parses a "host,port" DHT bootstrap node.
func ParseNode(s string) (torrent.Node, error) {
	host, portStr, ok := strings.Cut(s, ",")
	if !ok || strings.Contains(portStr, ",") {
		return torrent.Node{}, fmt.Errorf("%w: %q: use the format host,port", ErrInvalidNode, s)
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return torrent.Node{}, fmt.Errorf("%w: %q: empty host", ErrInvalidNode, s)
	}
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || port <= 0 || port > 65535 {
		return torrent.Node{}, fmt.Errorf("%w: %q: port must be a number between 1 and 65535", ErrInvalidNode, s)
	}
	if strings.ContainsAny(host, " /\t") {
		return torrent.Node{}, fmt.Errorf("%w: %q: bad host", ErrInvalidNode, s)
	}
	return torrent.Node{Host: host, Port: port}, nil
}

// ParseNodes parses every entry. Valid nodes are returned even when some
// entries fail; the failures are joined into the error.
func ParseNodes(list []string) ([]torrent.Node, error) {
	var nodes []torrent.Node
	var errs []error
	for _, s := range list {
		n, err := ParseNode(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, errors.Join(errs...)
}
