package torrent

import "errors"

// Errors returned by the torrent builder. They are wrapped with context, so
// compare with errors.Is.
var (
	ErrInvalidSize          = errors.New("total size must be greater than 0")
	ErrInvalidPieceLength   = errors.New("invalid piece length")
	ErrUnsupportedNodeType  = errors.New("unsupported node type")
	ErrUnreadableEntry      = errors.New("unreadable entry")
	ErrInvalidMetadataField = errors.New("invalid metadata field")
	ErrIncompatibleOptions  = errors.New("incompatible options")
	ErrIO                   = errors.New("i/o error")
)
