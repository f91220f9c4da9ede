// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package storage persists fitted text models across restarts.
//
// Models are gob-encoded, gzip-compressed and written with a SHA-256
// checksum of the uncompressed payload:
//
//	filename: {name}_v{version}.gob.gz
//
// Writes go to a temporary file that is renamed into place, so a reader
// never observes a partially written model. Versions increase
// monotonically per name; Prune keeps the newest N.
//
//	store, err := storage.NewStore("/data/models", 3)
//	meta, err := store.SaveLatest(ctx, "corpus", model, storage.ModelMetadata{DocumentCount: 120})
//
//	var model textsim.Model
//	meta, err := store.LoadLatest(ctx, "corpus", &model)
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const modelExt = ".gob.gz"

// ErrModelNotFound is returned when no version of a model has been saved.
var ErrModelNotFound = errors.New("model not found")

// ModelMetadata describes a stored model.
type ModelMetadata struct {
	Name    string `json:"name"`
	Version int    `json:"version"`

	// FittedAt is when the model was fitted; SavedAt when it was written.
	FittedAt time.Time `json:"fitted_at"`
	SavedAt  time.Time `json:"saved_at"`

	DocumentCount  int   `json:"document_count"`
	VocabularySize int   `json:"vocabulary_size"`
	FitDurationMS  int64 `json:"fit_duration_ms"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store manages versioned model files in one directory.
type Store struct {
	baseDir string
	keep    int

	mu       sync.RWMutex
	versions map[string]int
}

// NewStore opens (creating if needed) a model directory. keep is the number
// of versions SaveLatest retains per model; values below 1 mean 3.
func NewStore(baseDir string, keep int) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if keep < 1 {
		keep = 3
	}

	s := &Store{
		baseDir:  baseDir,
		keep:     keep,
		versions: make(map[string]int),
	}

	versions, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	for name, vs := range versions {
		s.versions[name] = vs[0]
	}

	return s, nil
}

// scan returns every stored version per model name, newest first.
func (s *Store) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), modelExt) {
			continue
		}
		name, version := parseModelFilename(strings.TrimSuffix(entry.Name(), modelExt))
		if name == "" {
			continue
		}
		found[name] = append(found[name], version)
	}
	for _, vs := range found {
		sort.Sort(sort.Reverse(sort.IntSlice(vs)))
	}
	return found, nil
}

// parseModelFilename splits "corpus_v12" into ("corpus", 12).
func parseModelFilename(base string) (name string, version int) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	if _, err := fmt.Sscanf(base[idx+2:], "%d", &version); err != nil || version <= 0 {
		return "", 0
	}
	return base[:idx], version
}

// Save writes data as the given version of name.
//
//nolint:gocritic // meta passed by value, it is filled in and stored
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) (ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return ModelMetadata{}, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(data); err != nil {
		return ModelMetadata{}, fmt.Errorf("encode model: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return ModelMetadata{}, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return ModelMetadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(name, version, storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return ModelMetadata{}, err
	}
	if version > s.versions[name] {
		s.versions[name] = version
	}
	return meta, nil
}

// writeFile writes sf to a temp file and renames it into place. Caller holds s.mu.
func (s *Store) writeFile(name string, version int, sf storedFile) error {
	f, err := os.CreateTemp(s.baseDir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		_ = f.Close() //nolint:errcheck // write error already being returned
		return fmt.Errorf("write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp, s.modelPath(name, version)); err != nil {
		return fmt.Errorf("publish model file: %w", err)
	}
	return nil
}

// SaveLatest saves data as the next version of name and prunes old versions.
//
//nolint:gocritic // meta passed by value, it is filled in and stored
func (s *Store) SaveLatest(ctx context.Context, name string, data any, meta ModelMetadata) (ModelMetadata, error) {
	s.mu.RLock()
	next := s.versions[name] + 1
	s.mu.RUnlock()

	saved, err := s.Save(ctx, name, next, data, meta)
	if err != nil {
		return ModelMetadata{}, err
	}
	if _, err := s.Prune(name, s.keep); err != nil {
		return saved, fmt.Errorf("prune %s: %w", name, err)
	}
	return saved, nil
}

// Load decodes a version of name into target. Version 0 means latest.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		if version, ok = s.versions[name]; !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrModelNotFound)
		}
	}

	f, err := os.Open(s.modelPath(name, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s v%d: %w", name, version, ErrModelNotFound)
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // in-memory reader

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &sf.Metadata, nil
}

// LoadLatest decodes the newest version of name into target.
func (s *Store) LoadLatest(ctx context.Context, name string, target any) (*ModelMetadata, error) {
	return s.Load(ctx, name, 0, target)
}

// LatestVersion returns the newest saved version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	return v, ok
}

// Prune deletes all but the newest keep versions of name and returns the
// number of files removed.
func (s *Store) Prune(name string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.scan()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	versions := all[name]
	removed := 0
	for i := keep; i < len(versions); i++ {
		if err := os.Remove(s.modelPath(name, versions[i])); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("delete %s v%d: %w", name, versions[i], err)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelExt))
}
