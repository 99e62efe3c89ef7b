package clipboard

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
)

const sampleMagnet = "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567&dn=test"

func TestValidator_ExtractMagnet(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", sampleMagnet, sampleMagnet},
		{"surrounding whitespace", "  " + sampleMagnet + "\t", sampleMagnet},
		{"upper scheme", "MAGNET:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567", "MAGNET:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567"},
		{"no btih", "magnet:?dn=test", ""},
		{"short hash", "magnet:?xt=urn:btih:abc", ""},
		{"not hex", "magnet:?xt=urn:btih:zz23456789abcdef0123456789abcdef01234567", ""},
		{"http url", "https://example.com/a.torrent", ""},
		{"newline", sampleMagnet + "\nmore", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ExtractMagnet(tt.input); got != tt.want {
				t.Errorf("ExtractMagnet(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCopyMagnet(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("clipboard unsupported")
	}
	var written string
	old := clipboardWriteAll
	clipboardWriteAll = func(text string) error {
		written = text
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = old })

	if err := CopyMagnet(sampleMagnet); err != nil {
		t.Fatalf("CopyMagnet failed: %v", err)
	}
	if written != sampleMagnet {
		t.Errorf("clipboard got %q", written)
	}
}

func TestCopyMagnet_Rejects(t *testing.T) {
	if err := CopyMagnet("https://example.com"); !errors.Is(err, ErrNotMagnet) {
		t.Errorf("expected ErrNotMagnet, got %v", err)
	}
}

func TestCopyMagnet_WriteError(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("clipboard unsupported")
	}
	boom := errors.New("boom")
	old := clipboardWriteAll
	clipboardWriteAll = func(string) error { return boom }
	t.Cleanup(func() { clipboardWriteAll = old })

	if err := CopyMagnet(sampleMagnet); !errors.Is(err, boom) {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}
