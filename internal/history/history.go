// Package history keeps a local record of the torrents this tool created.
package history

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history record not found")

// Record describes one created torrent.
type Record struct {
	ID          string
	Name        string
	TargetPath  string
	OutputPath  string
	InfoHash    string
	TotalSize   int64
	PieceLength int64
	NumPieces   int
	NumFiles    int
	Private     bool
	CreatedAt   time.Time
}

// InfoHashHex formats a raw info hash the way records store it.
func InfoHashHex(hash [20]byte) string {
	return hex.EncodeToString(hash[:])
}

// Add stores rec, assigning an ID and timestamp when unset. It returns the
// stored record.
func Add(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	err := withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO torrents (
				id, name, target_path, output_path, info_hash,
				total_size, piece_length, num_pieces, num_files, private, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.TargetPath, rec.OutputPath, rec.InfoHash,
			rec.TotalSize, rec.PieceLength, rec.NumPieces, rec.NumFiles, rec.Private, rec.CreatedAt.Unix(),
		)
		return err
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to save history record: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. A limit of 0 or less
// returns everything.
func List(limit int) ([]Record, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, target_path, output_path, info_hash,
			total_size, piece_length, num_pieces, num_files, private, created_at
		FROM torrents
		ORDER BY created_at DESC, rowid DESC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = d.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = d.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns the record with the given id.
func Get(id string) (*Record, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}

	row := d.QueryRow(`
		SELECT id, name, target_path, output_path, info_hash,
			total_size, piece_length, num_pieces, num_files, private, created_at
		FROM torrents WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Clear removes every record and returns how many were deleted.
func Clear() (int64, error) {
	var n int64
	err := withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM torrents`)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec       Record
		createdAt int64
	)
	err := s.Scan(
		&rec.ID, &rec.Name, &rec.TargetPath, &rec.OutputPath, &rec.InfoHash,
		&rec.TotalSize, &rec.PieceLength, &rec.NumPieces, &rec.NumFiles, &rec.Private, &createdAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, nil
}
