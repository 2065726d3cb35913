package mirror

import (
	"context"
	"errors"
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

// VisitFunc receives a directory and the names of the files directly inside it,
// returning an error stops the walk with that error.
type VisitFunc func(dir string, files []string) error

// WalkLocal visits root and every directory below it in depth-first pre-order,
// a directory is visited before any of its subdirectories.
// Entries keep the order the filesystem lists them in.
// Symbolic links to directories are skipped, links to files are listed as files.
func WalkLocal(fsys billy.Filesystem, root string, fn VisitFunc) error {
	ri, err := fsys.Stat(root)
	if err != nil {
		return newError(ErrTransferFailed, "stat", root, err)
	}

	if !ri.IsDir() {
		return newError(ErrTransferFailed, "readdir", root, errors.New("not a directory"))
	}

	is, err := fsys.ReadDir(root)
	if err != nil {
		return newError(ErrTransferFailed, "readdir", root, err)
	}

	var files, dirs []string

	for _, i := range is {
		switch {
		case i.IsDir():
			dirs = append(dirs, i.Name())
		case i.Mode()&fs.ModeSymlink != 0 && isLinkedDir(fsys, fsys.Join(root, i.Name())):
			// Linked directories are not followed.
		default:
			files = append(files, i.Name())
		}
	}

	if err = fn(root, files); err != nil {
		return err
	}

	for _, d := range dirs {
		if err = WalkLocal(fsys, fsys.Join(root, d), fn); err != nil {
			return err
		}
	}

	return nil
}

// isLinkedDir reports whether the link at p resolves to a directory,
// a dangling link is not one.
func isLinkedDir(fsys billy.Filesystem, p string) bool {
	i, err := fsys.Stat(p)
	return err == nil && i.IsDir()
}

// WalkRemote is the remote counterpart of WalkLocal,
// an entry is a directory if and only if the listing says so.
func WalkRemote(ctx context.Context, s types.Session, root string, fn VisitFunc) error {
	es, err := s.ReadDir(ctx, root)
	if err != nil {
		if errors.Is(err, types.ErrNotExist) {
			return newError(ErrRemotePathNotFound, "readdir", root, err)
		}

		return newError(ErrSessionFailure, "readdir", root, err)
	}

	var files, dirs []string

	for _, e := range es {
		if e.IsDir {
			dirs = append(dirs, e.Name)
		} else {
			files = append(files, e.Name)
		}
	}

	if err = fn(root, files); err != nil {
		return err
	}

	for _, d := range dirs {
		if err = WalkRemote(ctx, s, JoinRemote(root, d), fn); err != nil {
			return err
		}
	}

	return nil
}
