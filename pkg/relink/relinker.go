package relink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/philipparndt/mtlrelink/internal/logging"
	"github.com/philipparndt/mtlrelink/pkg/obj"
)

// ErrIsDirectory is returned when a material reference to be cleaned up
// names a directory
var ErrIsDirectory = errors.New("material reference is a directory")

// Options configures a Relinker
type Options struct {
	// Target replaces the reference of every mtllib line
	Target string
	// Cleanup deletes the replaced material files after each directory
	Cleanup bool
	// SkipUnchanged leaves files alone whose content would not change.
	// Cleanup then only considers references of files that were rewritten,
	// and never deletes Target.
	SkipUnchanged bool
}

// DirResult describes what happened in one directory
type DirResult struct {
	Dir   string
	Files []string
	// References holds every replaced reference in file order, duplicates included
	References []string
	// Written counts the mesh files that were rewritten on disk
	Written int
	// Deleted holds the material files removed by cleanup
	Deleted []string
}

// Summary aggregates a whole-tree run
type Summary struct {
	Directories int
	Files       int
	Written     int
	References  int
	Deleted     []string
}

// Relinker rewrites mtllib lines of mesh files
type Relinker struct {
	opts Options
}

// New creates a Relinker
func New(opts Options) *Relinker {
	return &Relinker{opts: opts}
}

// Run relinks root and every directory below it.
// Each directory is processed independently with its own path as the base
// for cleanup. The first error aborts the run.
func (r *Relinker) Run(ctx context.Context, root string) (*Summary, error) {
	log := logging.Get(ctx)
	summary := &Summary{}

	err := walk(ctx, root, func(dir string, entries []fs.DirEntry) error {
		res, err := r.processDir(ctx, dir, meshFiles(dir, entries))
		if err != nil {
			return err
		}
		summary.add(res)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("relink complete",
		"root", root,
		"directories", summary.Directories,
		"files", summary.Files,
		"written", summary.Written,
		"references", summary.References,
		"deleted", len(summary.Deleted))
	return summary, nil
}

func (s *Summary) add(res *DirResult) {
	s.Directories++
	s.Files += len(res.Files)
	s.Written += res.Written
	s.References += len(res.References)
	s.Deleted = append(s.Deleted, res.Deleted...)
}

// ProcessDir relinks the mesh files directly inside dir and, if cleanup is
// enabled, deletes the material files they referenced.
func (r *Relinker) ProcessDir(ctx context.Context, dir string) (*DirResult, error) {
	files, err := MeshFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return r.processDir(ctx, dir, files)
}

func (r *Relinker) processDir(ctx context.Context, dir string, files []string) (*DirResult, error) {
	log := logging.Get(ctx).With("dir", dir)
	res := &DirResult{Dir: dir}
	var cleanup []string

	for _, path := range files {
		written, refs, err := r.relinkFile(path)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
		res.References = append(res.References, refs...)
		if written {
			res.Written++
		}
		if written || !r.opts.SkipUnchanged {
			cleanup = append(cleanup, refs...)
		}
		log.Debug("relinked mesh", "file", path, "references", refs, "written", written)
	}

	if !r.opts.Cleanup {
		return res, nil
	}

	for _, ref := range unique(cleanup) {
		if r.opts.SkipUnchanged && ref == r.opts.Target {
			continue
		}
		path := resolve(dir, ref)
		removed, err := removeMaterial(path)
		if err != nil {
			return nil, err
		}
		if !removed {
			continue
		}
		if ref == r.opts.Target {
			log.Warn("deleted material that is also the relink target", "file", path)
		}
		log.Debug("deleted material", "file", path)
		res.Deleted = append(res.Deleted, path)
	}

	return res, nil
}

// relinkFile rewrites a single mesh file.
// The new content is built completely before the file is opened for writing,
// so a malformed mtllib line leaves the file untouched.
func (r *Relinker) relinkFile(path string) (bool, []string, error) {
	f, err := obj.Parse(path)
	if err != nil {
		return false, nil, err
	}

	relinked, refs, err := f.Relink(r.opts.Target)
	if err != nil {
		return false, nil, err
	}

	if r.opts.SkipUnchanged && relinked.Content() == f.Content() {
		return false, refs, nil
	}

	if err := obj.Write(relinked); err != nil {
		return false, nil, err
	}
	return true, refs, nil
}

// removeMaterial deletes a material file. A file that is already gone is not
// an error; a directory is.
func removeMaterial(path string) (bool, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove material %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("failed to remove material %s: %w", path, ErrIsDirectory)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove material %s: %w", path, err)
	}
	return true, nil
}
