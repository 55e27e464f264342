package relink

import (
	"context"
	"io/fs"

	"github.com/philipparndt/mtlrelink/pkg/obj"
)

// FileReport lists the mtllib references of one mesh file
type FileReport struct {
	Path       string
	References []string
}

// DirReport lists the mesh files of one directory
type DirReport struct {
	Dir   string
	Files []FileReport
}

// Scan walks root like Run but only reads. Every visited directory gets a
// report, including directories without mesh files. A malformed mtllib line
// fails the scan the same way it fails a relink.
func Scan(ctx context.Context, root string) ([]DirReport, error) {
	var reports []DirReport

	err := walk(ctx, root, func(dir string, entries []fs.DirEntry) error {
		report := DirReport{Dir: dir}
		for _, path := range meshFiles(dir, entries) {
			f, err := obj.Parse(path)
			if err != nil {
				return err
			}
			refs, err := f.MaterialLibraries()
			if err != nil {
				return err
			}
			report.Files = append(report.Files, FileReport{Path: path, References: refs})
		}
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}

// Resolve returns the path a reference found in dir points at, the same way
// cleanup resolves it.
func Resolve(dir, ref string) string {
	return resolve(dir, ref)
}
