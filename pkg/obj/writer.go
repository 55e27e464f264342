package obj

import (
	"fmt"
	"os"
)

// Write overwrites the mesh file in place.
// The file is truncated and rewritten under the same path; permissions of an
// existing file are left as they are.
func Write(f *File) error {
	file, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", f.Path, err)
	}

	if _, err := file.WriteString(f.Content()); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", f.Path, err)
	}
	return nil
}
