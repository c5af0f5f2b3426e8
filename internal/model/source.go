// Package model defines the records exchanged between treedelta's layers and
// persisted in reports.
package model

// Path represents a file system path.
type Path string

// File identifies one input of a diff.
type File struct {
	Path     Path   `json:"path" yaml:"path"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Hash     string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Size     int64  `json:"size" yaml:"size"`
}

// FilePair is a source and a destination input to diff. One side is nil when
// a directory diff finds a file on one side only.
type FilePair struct {
	Name        string
	Source      *File
	Destination *File
}
