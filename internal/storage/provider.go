// Package storage keeps uploaded document bytes on the local file system.
package storage

import "time"

// FileInfo describes one stored file.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Provider is the interface for document file operations. Names are plain
// file names relative to the documents root.
type Provider interface {
	// List returns every stored file, skipping dotfiles.
	List() ([]FileInfo, error)
	// Stat describes the named file. Missing files yield an error
	// matching os.ErrNotExist.
	Stat(name string) (FileInfo, error)
	// Read returns the bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically writes content under name.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
	// FreeName returns name, or name with a numeric suffix, such that no
	// stored file uses it yet.
	FreeName(name string) (string, error)
	// Root returns the absolute documents directory.
	Root() string
}
