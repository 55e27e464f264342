package relink

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/mtlrelink/internal/logging"
)

// MeshPattern selects the mesh files of a directory
const MeshPattern = "*.obj"

// IsMeshName reports whether a file name matches MeshPattern.
// As with a shell glob, names starting with a dot never match.
func IsMeshName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ok, _ := filepath.Match(MeshPattern, name)
	return ok
}

// MeshFiles lists the mesh files directly inside dir, in lexical order.
func MeshFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return meshFiles(dir, entries), nil
}

func meshFiles(dir string, entries []fs.DirEntry) []string {
	var files []string
	for _, e := range entries {
		if !IsMeshName(e.Name()) || e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err == nil && info.IsDir() {
				continue
			}
		}
		files = append(files, path)
	}
	return files
}

// walk calls fn for root and every directory below it, parents first and in
// lexical order. Each directory is listed once and the listing is handed to fn.
// Directories that cannot be read are skipped with a warning, and symbolic
// links to directories are not followed.
func walk(ctx context.Context, root string, fn func(dir string, entries []fs.DirEntry) error) error {
	info, err := os.Lstat(root)
	if err != nil {
		logging.Get(ctx).Warn("skipping unreadable path", "path", root, "err", err)
		return nil
	}
	if !info.IsDir() {
		return nil
	}
	return walkDir(ctx, root, fn)
}

func walkDir(ctx context.Context, dir string, fn func(dir string, entries []fs.DirEntry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Get(ctx).Warn("skipping unreadable directory", "dir", dir, "err", err)
		return nil
	}
	if err := fn(dir, entries); err != nil {
		return err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := walkDir(ctx, filepath.Join(dir, e.Name()), fn); err != nil {
			return err
		}
	}
	return nil
}

// resolve joins a material reference onto the directory it was found in.
// The result is not cleaned, so ".." is resolved by the filesystem rather
// than lexically. Absolute references are used as they are.
func resolve(dir, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + ref
	}
	return dir + string(filepath.Separator) + ref
}

// unique drops repeated references, keeping first appearance order
func unique(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}
