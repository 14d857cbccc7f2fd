// Package model defines the data structures for parameter scans.
package model

import "path/filepath"

// Path represents a file system path.
type Path string

// Join appends path elements to p.
func (p Path) Join(elem ...string) Path {
	return Path(filepath.Join(append([]string{string(p)}, elem...)...))
}
