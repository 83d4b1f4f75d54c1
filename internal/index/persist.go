package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// persistedIndex is the gob-encoded on-disk form of a Flat index.
type persistedIndex struct {
	Version    int
	ModelName  string
	Dimensions int
	Vectors    [][]float32
}

// Save persists the index to path using GOB encoding. The file is
// written to a temp file first and renamed, so readers never observe a
// partially written index.
func (x *Flat) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := gob.NewEncoder(f)
	err = enc.Encode(persistedIndex{
		Version:    CurrentFormatVersion,
		ModelName:  x.modelName,
		Dimensions: x.dim,
		Vectors:    x.vecs,
	})
	if err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Load reads a persisted index from path. The stored format version,
// model name, and dimensionality must match the requested configuration;
// any missing, corrupt, or incompatible file is reported as
// ErrIndexUnavailable so the caller can fall back to an empty index.
func Load(path, modelName string, dim int) (*Flat, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrIndexUnavailable, filepath.Base(path))
		}
		return nil, fmt.Errorf("%w: opening %s: %v", ErrIndexUnavailable, filepath.Base(path), err)
	}
	defer f.Close()

	var p persistedIndex
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding index: %v", ErrIndexUnavailable, err)
	}

	if p.Version != CurrentFormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrIndexUnavailable, p.Version, CurrentFormatVersion)
	}
	if p.ModelName != modelName {
		return nil, fmt.Errorf("%w: built with model %q, configured model is %q", ErrIndexUnavailable, p.ModelName, modelName)
	}
	if p.Dimensions != dim {
		return nil, fmt.Errorf("%w: built with %d dimensions, configured for %d", ErrIndexUnavailable, p.Dimensions, dim)
	}

	x := NewFlat(modelName, dim)
	if _, err := x.Add(p.Vectors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return x, nil
}
