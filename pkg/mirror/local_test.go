package mirror

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

// localTree creates a filesystem holding the given entries,
// keys ending with a slash are directories, the others files with the value as content.
func localTree(t *testing.T, entries map[string]string) billy.Filesystem {
	t.Helper()

	fsys := memfs.New()

	for p, content := range entries {
		if strings.HasSuffix(p, "/") {
			require.NoError(t, fsys.MkdirAll(p, 0o755))
			continue
		}

		require.NoError(t, util.WriteFile(fsys, p, []byte(content), 0o644))
	}

	return fsys
}

// linkedTree creates an on-disk tree holding symbolic links,
//
//	/src/top.txt
//	/src/real/f.txt
//	/src/link      -> real
//	/src/file-link -> real/f.txt
func linkedTree(t *testing.T) billy.Filesystem {
	t.Helper()

	dir := t.TempDir()
	fsys := osfs.New(dir)

	require.NoError(t, util.WriteFile(fsys, "/src/top.txt", []byte("top"), 0o644))
	require.NoError(t, util.WriteFile(fsys, "/src/real/f.txt", []byte("f"), 0o644))

	links := map[string]string{
		"link":      "real",
		"file-link": filepath.Join("real", "f.txt"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(dir, "src", name)); err != nil {
			t.Skipf("symbolic links unavailable: %v", err)
		}
	}

	return fsys
}

// snapshot renders the local tree below root in the same shape localTree takes.
func snapshot(t *testing.T, fsys billy.Filesystem, root string) map[string]string {
	t.Helper()

	r := map[string]string{}

	var walk func(dir string)
	walk = func(dir string) {
		is, err := fsys.ReadDir(dir)
		require.NoError(t, err)

		for _, i := range is {
			p := fsys.Join(dir, i.Name())
			rel := filepath.ToSlash(RelativeOffset(root, p))

			if i.IsDir() {
				r[rel+"/"] = ""
				walk(p)

				continue
			}

			bs, err := util.ReadFile(fsys, p)
			require.NoError(t, err)

			r[rel] = string(bs)
		}
	}

	walk(root)

	return r
}
