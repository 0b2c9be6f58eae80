package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the docshard home directory.
	DefaultDirName = ".docshard"

	// ChunksDirName is the subdirectory for materialized chunk artifacts.
	ChunksDirName = "chunks"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the docshard home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.docshard).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ChunksPath returns the path to the chunk artifact root.
func (d *Dir) ChunksPath() string {
	return filepath.Join(d.path, ChunksDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create chunks directory (this also creates the parent)
	if err := os.MkdirAll(d.ChunksPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create chunks directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DocumentChunksDir returns the artifact directory for one document.
func (d *Dir) DocumentChunksDir(documentID string) string {
	return filepath.Join(d.ChunksPath(), documentID)
}

// ChunkPath returns the artifact path for a specific chunk of a document.
func (d *Dir) ChunkPath(documentID, chunkID string) string {
	return filepath.Join(d.DocumentChunksDir(documentID), chunkID+".pdf")
}

// EnsureDocumentChunksDir creates the artifact directory for a document.
func (d *Dir) EnsureDocumentChunksDir(documentID string) error {
	return os.MkdirAll(d.DocumentChunksDir(documentID), 0o755)
}
