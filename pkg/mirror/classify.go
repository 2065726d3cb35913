package mirror

import (
	"context"
	"errors"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

type EntryKind int

const (
	File EntryKind = iota
	Directory
)

func (k EntryKind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	}

	return "unknown"
}

// Classify reports whether the remote path is a directory or a file.
func Classify(ctx context.Context, s types.Session, path string) (EntryKind, error) {
	e, err := s.Stat(ctx, path)
	if err != nil {
		if errors.Is(err, types.ErrNotExist) {
			return File, newError(ErrRemotePathNotFound, "stat", path, err)
		}

		return File, newError(ErrSessionFailure, "stat", path, err)
	}

	if e.IsDir {
		return Directory, nil
	}

	return File, nil
}
