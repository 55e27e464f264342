package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Keyword is the statement naming the material library of a mesh file
const Keyword = "mtllib"

// ErrMalformedMtllib is returned for an mtllib line without a reference
var ErrMalformedMtllib = errors.New("malformed mtllib line: missing material reference")

// Parse reads a mesh file and returns its lines.
// Line terminators are preserved, including a missing one on the last line.
func Parse(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	f := NewFile(filename)
	if err := parseLines(file, f); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}

	return f, nil
}

// parseLines splits the reader into lines ending in '\n'
func parseLines(reader io.Reader, f *File) error {
	r := bufio.NewReader(reader)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			f.AddLine(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// IsMaterialLibrary reports whether line starts with the mtllib keyword.
// The match is a plain prefix match on the raw line.
func IsMaterialLibrary(line string) bool {
	return strings.HasPrefix(line, Keyword)
}

// MaterialReference extracts the material path from an mtllib line.
// It is the second whitespace-delimited token of the line.
func MaterialReference(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", ErrMalformedMtllib
	}
	return fields[1], nil
}

// Line formats an mtllib line pointing at target
func Line(target string) string {
	return Keyword + " " + target + "\n"
}

// Rewrite replaces every mtllib line with one pointing at target.
// All other lines are passed through unchanged. The original references are
// returned in order of appearance, duplicates included.
func Rewrite(lines []string, target string) ([]string, []string, error) {
	out := make([]string, 0, len(lines))
	var refs []string

	for i, line := range lines {
		if !IsMaterialLibrary(line) {
			out = append(out, line)
			continue
		}

		ref, err := MaterialReference(line)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		refs = append(refs, ref)
		out = append(out, Line(target))
	}

	return out, refs, nil
}
