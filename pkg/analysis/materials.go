package analysis

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/philipparndt/mtlrelink/pkg/relink"
)

// MaterialInfo describes one material file referenced from a directory
type MaterialInfo struct {
	Path      string `yaml:"path"`
	Reference string `yaml:"reference"`
	Dir       string `yaml:"dir"`
	Users     int    `yaml:"users"`
	Exists    bool   `yaml:"exists"`
	IsTarget  bool   `yaml:"is_target"`
}

// ScanResult contains statistics about the material references of a tree
type ScanResult struct {
	Directories    int            `yaml:"directories"`
	MeshFiles      int            `yaml:"mesh_files"`
	References     int            `yaml:"references"`
	Linked         int            `yaml:"linked"`
	Unlinked       int            `yaml:"unlinked"`
	WithoutLibrary int            `yaml:"without_library"`
	Materials      []MaterialInfo `yaml:"materials"`
}

// Analyze aggregates scan reports. A mesh file counts as linked when it has at
// least one mtllib line and all of them already point at target.
func Analyze(reports []relink.DirReport, target string) *ScanResult {
	result := &ScanResult{
		Directories: len(reports),
		Materials:   make([]MaterialInfo, 0),
	}

	index := make(map[string]int)

	for _, report := range reports {
		for _, file := range report.Files {
			result.MeshFiles++
			result.References += len(file.References)

			switch {
			case len(file.References) == 0:
				result.WithoutLibrary++
			case allEqual(file.References, target):
				result.Linked++
			default:
				result.Unlinked++
			}

			for _, ref := range file.References {
				resolved := relink.Resolve(report.Dir, ref)
				path := filepath.Clean(resolved)
				if i, ok := index[path]; ok {
					result.Materials[i].Users++
					continue
				}
				index[path] = len(result.Materials)
				result.Materials = append(result.Materials, MaterialInfo{
					Path:      path,
					Reference: ref,
					Dir:       report.Dir,
					Users:     1,
					Exists:    fileExists(resolved),
					IsTarget:  ref == target,
				})
			}
		}
	}

	sort.Slice(result.Materials, func(i, j int) bool {
		return result.Materials[i].Path < result.Materials[j].Path
	})

	return result
}

// Missing returns the referenced materials that do not exist on disk
func (r *ScanResult) Missing() []MaterialInfo {
	var missing []MaterialInfo
	for _, m := range r.Materials {
		if !m.Exists {
			missing = append(missing, m)
		}
	}
	return missing
}

// Superseded returns the existing materials that a batch cleanup run would
// delete. That includes the target wherever meshes already reference it.
func (r *ScanResult) Superseded() []MaterialInfo {
	var superseded []MaterialInfo
	for _, m := range r.Materials {
		if m.Exists {
			superseded = append(superseded, m)
		}
	}
	return superseded
}

func allEqual(refs []string, target string) bool {
	for _, ref := range refs {
		if ref != target {
			return false
		}
	}
	return true
}

// fileExists checks path the way cleanup removes it: the entry itself, not the
// file a symbolic link points at
func fileExists(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && !info.IsDir()
}
