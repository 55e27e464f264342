package obj

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesTerminators(t *testing.T) {
	content := "# cube\r\nmtllib cube.mtl\nv 0 0 0\nf 1 2 3"
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"# cube\r\n", "mtllib cube.mtl\n", "v 0 0 0\n", "f 1 2 3"}, f.Lines)
	assert.Equal(t, content, f.Content())
	assert.Equal(t, 4, f.LineCount())
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.obj"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIsMaterialLibrary(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"mtllib a.mtl\n", true},
		{"mtllib\n", true},
		{"mtllibfoo.mtl\n", true},
		{" mtllib a.mtl\n", false},
		{"usemtl wood\n", false},
		{"# mtllib a.mtl\n", false},
		{"MTLLIB a.mtl\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.line), func(t *testing.T) {
			assert.Equal(t, tt.want, IsMaterialLibrary(tt.line))
		})
	}
}

func TestMaterialReference(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		wantErr bool
	}{
		{name: "simple", line: "mtllib old1.mtl\n", want: "old1.mtl"},
		{name: "tabs", line: "mtllib\tdir/old.mtl\r\n", want: "dir/old.mtl"},
		{name: "extra tokens", line: "mtllib a.mtl b.mtl\n", want: "a.mtl"},
		{name: "parent relative", line: "mtllib ../shared.mtl\n", want: "../shared.mtl"},
		{name: "no token", line: "mtllib\n", wantErr: true},
		{name: "only spaces", line: "mtllib   \n", wantErr: true},
		{name: "glued token", line: "mtllibx.mtl\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaterialReference(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMtllib)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewrite(t *testing.T) {
	lines := []string{
		"# exported\n",
		"mtllib x.mtl\n",
		"v 1 2 3\n",
		"mtllib y.mtl\r\n",
		"usemtl skin\n",
		"f 1 2 3",
	}

	out, refs, err := Rewrite(lines, "../../lib.mtl")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"# exported\n",
		"mtllib ../../lib.mtl\n",
		"v 1 2 3\n",
		"mtllib ../../lib.mtl\n",
		"usemtl skin\n",
		"f 1 2 3",
	}, out)
	assert.Equal(t, []string{"x.mtl", "y.mtl"}, refs)
}

func TestRewriteKeepsDuplicates(t *testing.T) {
	_, refs, err := Rewrite([]string{"mtllib a.mtl\n", "mtllib a.mtl\n"}, "lib.mtl")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mtl", "a.mtl"}, refs)
}

func TestRewriteWithoutMaterialLibrary(t *testing.T) {
	lines := []string{"v 0 0 0\n", "f 1 1 1\n"}

	out, refs, err := Rewrite(lines, "lib.mtl")
	require.NoError(t, err)
	assert.Equal(t, lines, out)
	assert.Empty(t, refs)
}

func TestRewriteMalformed(t *testing.T) {
	_, _, err := Rewrite([]string{"v 0 0 0\n", "mtllib\n"}, "lib.mtl")
	require.ErrorIs(t, err, ErrMalformedMtllib)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRewriteIsIdempotent(t *testing.T) {
	lines := []string{"mtllib a.mtl\n", "v 0 0 0\n"}

	once, _, err := Rewrite(lines, "lib.mtl")
	require.NoError(t, err)
	twice, refs, err := Rewrite(once, "lib.mtl")
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"lib.mtl"}, refs)
}
