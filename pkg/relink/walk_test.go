package relink

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/mtlrelink/pkg/obj"
)

func TestIsMeshName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cube.obj", true},
		{"a.b.obj", true},
		{".obj", false},
		{".hidden.obj", false},
		{"cube.OBJ", false},
		{"cube.obj.bak", false},
		{"cube.mtl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMeshName(tt.name))
		})
	}
}

func TestMeshFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.obj"), "")
	writeFile(t, filepath.Join(dir, "a.obj"), "")
	writeFile(t, filepath.Join(dir, "c.mtl"), "")
	writeFile(t, filepath.Join(dir, "nested", "d.obj"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.obj"), 0o755))

	files, err := MeshFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.obj"), filepath.Join(dir, "b.obj")}, files)
}

func TestMeshFilesFollowsFileSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "real.obj"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "realdir"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real.obj"), filepath.Join(dir, "link.obj")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "realdir"), filepath.Join(dir, "dirlink.obj")))

	files, err := MeshFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "link.obj"), filepath.Join(dir, "real.obj")}, files)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "dir/a.mtl", resolve("dir", "a.mtl"))
	assert.Equal(t, "dir/../a.mtl", resolve("dir", "../a.mtl"))
	assert.Equal(t, "dir/a.mtl", resolve("dir/", "a.mtl"))
	assert.Equal(t, "/abs/a.mtl", resolve("dir", "/abs/a.mtl"))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, unique([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, unique(nil))
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "x.obj"), "")
	writeFile(t, filepath.Join(root, "a", "deep", "y.obj"), "")
	writeFile(t, filepath.Join(root, "top.obj"), "")
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "c")))

	var dirs []string
	listed := make(map[string][]string)
	err := walk(context.Background(), root, func(dir string, entries []fs.DirEntry) error {
		dirs = append(dirs, dir)
		for _, e := range entries {
			listed[dir] = append(listed[dir], e.Name())
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "deep"),
		filepath.Join(root, "b"),
	}, dirs)
	assert.Equal(t, []string{"a", "b", "c", "top.obj"}, listed[root])
	assert.Equal(t, []string{"y.obj"}, listed[filepath.Join(root, "a", "deep")])
}

func TestWalkRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file.obj")
	writeFile(t, root, "")

	called := false
	err := walk(context.Background(), root, func(string, []fs.DirEntry) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.obj"), "mtllib a.mtl\nmtllib b.mtl\n")
	writeFile(t, filepath.Join(root, "empty", "readme.txt"), "")
	writeFile(t, filepath.Join(root, "sub", "s.obj"), "v 0 0 0\n")
	before := snapshot(t, root)

	reports, err := Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(t, root))
	require.Len(t, reports, 3)
	assert.Equal(t, root, reports[0].Dir)
	assert.Equal(t, []FileReport{{Path: filepath.Join(root, "a.obj"), References: []string{"a.mtl", "b.mtl"}}}, reports[0].Files)
	assert.Equal(t, filepath.Join(root, "empty"), reports[1].Dir)
	assert.Empty(t, reports[1].Files)
	assert.Equal(t, []FileReport{{Path: filepath.Join(root, "sub", "s.obj")}}, reports[2].Files)
}

func TestScanMalformed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.obj"), "mtllib\n")

	_, err := Scan(context.Background(), root)
	require.ErrorIs(t, err, obj.ErrMalformedMtllib)
}
