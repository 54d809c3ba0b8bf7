// Package storage holds the checkpoint document format shared by the file and
// object-storage checkpoint stores.
package storage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"freightx/internal/domain"
)

// CheckpointVersion is written into every checkpoint document.
const CheckpointVersion = 1

// CheckpointDocument is the persisted form of a checkpoint.
type CheckpointDocument struct {
	Version   int                      `json:"version"`
	UpdatedAt time.Time                `json:"updated_at"`
	Entries   []domain.CheckpointEntry `json:"entries"`
}

// DecodeCheckpoint reads a checkpoint document. Empty input is an empty
// checkpoint; a bare JSON array of entries is accepted too.
func DecodeCheckpoint(data []byte) ([]domain.CheckpointEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var entries []domain.CheckpointEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCheckpointCorrupt, err)
		}
		return MergeCheckpoint(nil, entries), nil
	}

	var doc CheckpointDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCheckpointCorrupt, err)
	}
	if doc.Version > CheckpointVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrCheckpointCorrupt, doc.Version)
	}
	return MergeCheckpoint(nil, doc.Entries), nil
}

// EncodeCheckpoint renders entries as an indented checkpoint document.
func EncodeCheckpoint(entries []domain.CheckpointEntry, now time.Time) ([]byte, error) {
	if entries == nil {
		entries = []domain.CheckpointEntry{}
	}
	data, err := json.MarshalIndent(CheckpointDocument{
		Version:   CheckpointVersion,
		UpdatedAt: now.UTC(),
		Entries:   entries,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding checkpoint: %w", err)
	}
	return data, nil
}

// MergeCheckpoint appends added to existing, dropping entries whose email ID
// is already present. The first recorded outcome for an email wins.
func MergeCheckpoint(existing, added []domain.CheckpointEntry) []domain.CheckpointEntry {
	seen := make(map[string]bool, len(existing)+len(added))
	out := make([]domain.CheckpointEntry, 0, len(existing)+len(added))
	for _, list := range [][]domain.CheckpointEntry{existing, added} {
		for _, e := range list {
			if e.EmailID == "" || seen[e.EmailID] {
				continue
			}
			seen[e.EmailID] = true
			out = append(out, e)
		}
	}
	return out
}
