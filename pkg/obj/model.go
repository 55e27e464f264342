package obj

import (
	"fmt"
	"strings"
)

// File represents a mesh file as an ordered list of lines.
// Every line keeps its original terminator, so lines that are not touched
// can be written back byte for byte.
type File struct {
	Path  string
	Lines []string
}

// NewFile creates a new, empty mesh file for the given path
func NewFile(path string) *File {
	return &File{
		Path:  path,
		Lines: make([]string, 0),
	}
}

// AddLine appends a line to the file
func (f *File) AddLine(line string) {
	f.Lines = append(f.Lines, line)
}

// LineCount returns the number of lines in the file
func (f *File) LineCount() int {
	return len(f.Lines)
}

// MaterialLibraries returns the reference of every mtllib line, in file order.
// Duplicates are kept.
func (f *File) MaterialLibraries() ([]string, error) {
	var refs []string
	for i, line := range f.Lines {
		if !IsMaterialLibrary(line) {
			continue
		}
		ref, err := MaterialReference(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", f.Path, i+1, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Content returns the file content as it would be written to disk
func (f *File) Content() string {
	var sb strings.Builder
	for _, line := range f.Lines {
		sb.WriteString(line)
	}
	return sb.String()
}

// Relink returns a copy of the file with every mtllib line pointing at target,
// together with the references that were replaced.
func (f *File) Relink(target string) (*File, []string, error) {
	lines, refs, err := Rewrite(f.Lines, target)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return &File{Path: f.Path, Lines: lines}, refs, nil
}
