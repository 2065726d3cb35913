package types

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist tags every error a Session returns for a missing remote path,
// callers match it with errors.Is instead of inspecting the transport error.
var ErrNotExist = errors.New("remote path does not exist")

type (
	// Entry is one item of a remote directory listing.
	Entry struct {
		Name  string
		IsDir bool
	}

	// Session is a live remote filesystem connection,
	// every method blocks until the remote side answers.
	Session interface {
		io.Closer

		// Stat reports the entry at the given path,
		// the error wraps ErrNotExist if nothing is there.
		Stat(ctx context.Context, path string) (Entry, error)
		// ReadDir lists the given directory in the order the server returns.
		ReadDir(ctx context.Context, path string) ([]Entry, error)
		// Mkdir creates a single directory level.
		Mkdir(ctx context.Context, path string) error
		// Get streams the remote file into the given writer.
		Get(ctx context.Context, from string, to io.Writer) error
		// Put streams the given reader into the remote file, truncating it.
		Put(ctx context.Context, from io.Reader, to string) error
	}

	// SessionOpener opens a new Session, the caller owns the result.
	SessionOpener func(ctx context.Context) (Session, error)
)
