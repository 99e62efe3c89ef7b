package torrent

import (
	"crypto/sha1"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/surge-downloader/mktorrent/internal/torrent/bencode"
)

var (
	namePattern   = regexp.MustCompile(`^[A-Za-z0-9_\-., ()]+$`)
	sourcePattern = regexp.MustCompile(`^[A-Za-z0-9_\-., ]+$`)
)

// DatePolicy controls the "creation date" key.
type DatePolicy int

const (
	DateNow DatePolicy = iota
	DateExplicit
	DateOmit
)

// Options holds the caller-decided metadata for a torrent. Trackers, Nodes
// and WebSeeds are expected to be validated already.
type Options struct {
	Trackers []string
	Nodes    []Node
	WebSeeds []string
	Private  bool
	Source   string
	// Name overrides the file or directory name stored in the info dict.
	Name string
	// Comment is nil when none was given. A pointer to "" omits the key.
	Comment *string
	// Advertise fills an absent comment with "created with <CreatedBy>".
	Advertise bool
	// CreatedBy is stored as "created by" unless empty.
	CreatedBy string
	Date      DatePolicy
	Timestamp int64
	// Now is used for DateNow; nil means time.Now.
	Now func() time.Time
}

// Normalize trims Name and Source and checks every field that can be checked
// without touching the filesystem.
func (o Options) Normalize() (Options, error) {
	o.Name = strings.TrimSpace(o.Name)
	o.Source = strings.TrimSpace(o.Source)

	if o.Name != "" && !namePattern.MatchString(o.Name) {
		return o, fmt.Errorf("%w: name %q: allowed characters are A-Z, a-z, 0-9, spaces and any of .,_-()", ErrInvalidMetadataField, o.Name)
	}
	if o.Source != "" && !sourcePattern.MatchString(o.Source) {
		return o, fmt.Errorf("%w: source %q: allowed characters are A-Z, a-z, 0-9, spaces and any of .,_-", ErrInvalidMetadataField, o.Source)
	}
	if o.Private && len(o.Nodes) > 0 {
		return o, fmt.Errorf("%w: DHT bootstrap nodes cannot be used with a private torrent", ErrIncompatibleOptions)
	}
	switch o.Date {
	case DateNow, DateOmit:
	case DateExplicit:
		if o.Timestamp < 0 {
			return o, fmt.Errorf("%w: creation date %d is negative", ErrInvalidMetadataField, o.Timestamp)
		}
	default:
		return o, fmt.Errorf("%w: unknown date policy %d", ErrInvalidMetadataField, o.Date)
	}
	return o, nil
}

func (o Options) creationDate() *int64 {
	switch o.Date {
	case DateExplicit:
		ts := o.Timestamp
		return &ts
	case DateNow:
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		ts := now().Unix()
		return &ts
	}
	return nil
}

func (o Options) comment() string {
	if o.Comment != nil {
		return *o.Comment
	}
	if o.Advertise && o.CreatedBy != "" {
		return "created with " + o.CreatedBy
	}
	return ""
}

// Payload is the hashed content a metainfo is built from. A single-file
// payload has exactly one entry in Files.
type Payload struct {
	Name        string
	SingleFile  bool
	Files       []FileEntry
	PieceLength int64
	Pieces      *PieceTable
}

// Build assembles the metainfo for a hashed payload.
func Build(p Payload, opts Options) (*Metainfo, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	if p.PieceLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPieceLength, p.PieceLength)
	}
	if p.SingleFile && len(p.Files) != 1 {
		return nil, fmt.Errorf("%w: single-file payload has %d entries", ErrInvalidMetadataField, len(p.Files))
	}
	total := TotalLength(p.Files)
	if total <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, total)
	}
	if p.Pieces == nil || p.Pieces.Len() != PieceCount(total, p.PieceLength) {
		return nil, fmt.Errorf("%w: piece table does not cover %d bytes at piece length %d", ErrInvalidMetadataField, total, p.PieceLength)
	}

	info := Info{
		Name:        p.Name,
		PieceLength: p.PieceLength,
		Pieces:      append([]byte(nil), p.Pieces.Bytes()...),
		Private:     opts.Private,
		Source:      opts.Source,
	}
	if opts.Name != "" {
		info.Name = opts.Name
	}
	if info.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidMetadataField)
	}
	if p.SingleFile {
		info.Length = p.Files[0].Length
		info.MD5Sum = p.Files[0].MD5
	} else {
		info.Files = append([]FileEntry(nil), p.Files...)
	}

	mi := &Metainfo{
		Info:         info,
		Nodes:        append([]Node(nil), opts.Nodes...),
		URLList:      append([]string(nil), opts.WebSeeds...),
		CreationDate: opts.creationDate(),
		CreatedBy:    opts.CreatedBy,
		Comment:      opts.comment(),
	}
	if len(opts.Trackers) > 0 {
		mi.Announce = opts.Trackers[0]
	}
	// Clients that honour announce-list ignore announce, so every tracker
	// goes in, each in its own tier.
	if len(opts.Trackers) > 1 {
		for _, tr := range opts.Trackers {
			mi.AnnounceList = append(mi.AnnounceList, []string{tr})
		}
	}
	return mi, nil
}

// InfoDict returns the info dictionary as bencode values.
func (i Info) InfoDict() map[string]any {
	d := map[string]any{
		"name":         i.Name,
		"piece length": i.PieceLength,
		"pieces":       i.Pieces,
	}
	if i.Private {
		d["private"] = 1
	}
	if i.Source != "" {
		d["source"] = i.Source
	}
	if i.MultiFile() {
		files := make([]any, 0, len(i.Files))
		for _, f := range i.Files {
			path := make([]any, len(f.Path))
			for j, c := range f.Path {
				path[j] = c
			}
			fd := map[string]any{"length": f.Length, "path": path}
			if f.MD5 != "" {
				fd["md5sum"] = f.MD5
			}
			files = append(files, fd)
		}
		d["files"] = files
	} else {
		d["length"] = i.Length
		if i.MD5Sum != "" {
			d["md5sum"] = i.MD5Sum
		}
	}
	return d
}

// Dict returns the outer dictionary as bencode values. Absent optional
// fields are left out rather than encoded empty.
func (m *Metainfo) Dict() map[string]any {
	d := map[string]any{"info": m.Info.InfoDict()}
	if m.Announce != "" {
		d["announce"] = m.Announce
	}
	if len(m.AnnounceList) > 0 {
		tiers := make([]any, len(m.AnnounceList))
		for i, tier := range m.AnnounceList {
			t := make([]any, len(tier))
			for j, u := range tier {
				t[j] = u
			}
			tiers[i] = t
		}
		d["announce-list"] = tiers
	}
	if len(m.Nodes) > 0 {
		nodes := make([]any, len(m.Nodes))
		for i, n := range m.Nodes {
			nodes[i] = []any{n.Host, n.Port}
		}
		d["nodes"] = nodes
	}
	if len(m.URLList) > 0 {
		urls := make([]any, len(m.URLList))
		for i, u := range m.URLList {
			urls[i] = u
		}
		d["url-list"] = urls
	}
	if m.CreationDate != nil {
		d["creation date"] = *m.CreationDate
	}
	if m.CreatedBy != "" {
		d["created by"] = m.CreatedBy
	}
	if m.Comment != "" {
		d["comment"] = m.Comment
	}
	return d
}

// Encode returns the bencoded .torrent bytes.
func (m *Metainfo) Encode() ([]byte, error) {
	return bencode.Encode(m.Dict())
}

// InfoHash is the SHA-1 of the bencoded info dictionary.
func (m *Metainfo) InfoHash() ([20]byte, error) {
	b, err := bencode.Encode(m.Info.InfoDict())
	if err != nil {
		return [20]byte{}, err
	}
	return sha1.Sum(b), nil
}
