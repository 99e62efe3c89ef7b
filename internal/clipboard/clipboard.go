// Package clipboard copies magnet links to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/surge-downloader/mktorrent/internal/torrent"
)

var clipboardWriteAll = clipboard.WriteAll

// ErrNotMagnet is returned for text that is not a BitTorrent magnet link.
var ErrNotMagnet = errors.New("not a magnet link")

// Validator checks magnet links before they reach the clipboard.
type Validator struct {
	allowedSchemes map[string]bool
}

func NewValidator() *Validator {
	return &Validator{
		allowedSchemes: map[string]bool{"magnet": true},
	}
}

// ExtractMagnet returns text as a magnet link if it parses as one with a
// v1 info hash, otherwise "".
func (v *Validator) ExtractMagnet(text string) string {
	text = strings.TrimSpace(text)

	// Quick reject: contains newlines or obviously not a magnet
	scheme, _, ok := strings.Cut(text, ":")
	if !ok || strings.ContainsAny(text, "\n\r") || !v.allowedSchemes[strings.ToLower(scheme)] {
		return ""
	}
	if _, err := torrent.ParseMagnet(text); err != nil {
		return ""
	}
	return text
}

// CopyMagnet puts link on the clipboard.
func CopyMagnet(link string) error {
	magnet := NewValidator().ExtractMagnet(link)
	if magnet == "" {
		return fmt.Errorf("%w: %q", ErrNotMagnet, link)
	}
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := clipboardWriteAll(magnet); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
