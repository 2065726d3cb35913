// Package mirror mirrors a local tree onto a remote one and back
// over a single remote session.
package mirror

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/multierr"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

type (
	Engine struct {
		open   types.SessionOpener
		local  billy.Filesystem
		logger *slog.Logger
	}

	Option func(*Engine)
)

// WithLogger sets the sink of the progress lines, nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(open types.SessionOpener, local billy.Filesystem, opts ...Option) *Engine {
	e := &Engine{
		open:   open,
		local:  local,
		logger: discardLogger(),
	}

	for i := range opts {
		opts[i](e)
	}

	return e
}

// Upload copies the local file or directory tree at localPath to remotePath,
// every directory of the tree is created remotely, empty ones included.
func (e *Engine) Upload(ctx context.Context, localPath, remotePath string) (err error) {
	i, err := e.local.Stat(localPath)
	if err != nil {
		return newError(ErrLocalPathNotFound, "upload", localPath, err)
	}

	remotePath = JoinRemote(remotePath)

	s, err := e.openSession(ctx)
	if err != nil {
		return err
	}

	defer func() { err = multierr.Append(err, closeSession(s)) }()

	t := NewTransferer(s, e.local, e.logger)

	if !i.IsDir() {
		return t.CopyFile(ctx, localPath, remotePath, Upload)
	}

	e.logger.Info("Uploading directory", "transfer", localPath+" -> "+remotePath)

	return WalkLocal(e.local, localPath, func(dir string, files []string) error {
		rdir := JoinRemote(remotePath, RelativeOffset(localPath, dir))

		if err := t.materializer.Ensure(ctx, rdir); err != nil {
			return err
		}

		for _, f := range files {
			if err := t.put(ctx, e.local.Join(dir, f), JoinRemote(rdir, f)); err != nil {
				return err
			}
		}

		return nil
	})
}

// Download copies the remote file or directory tree at remotePath to localPath,
// every directory of the tree is created locally, empty ones included.
func (e *Engine) Download(ctx context.Context, remotePath, localPath string) (err error) {
	remotePath = JoinRemote(remotePath)
	if remotePath == "" {
		remotePath = "."
	}

	s, err := e.openSession(ctx)
	if err != nil {
		return err
	}

	defer func() { err = multierr.Append(err, closeSession(s)) }()

	k, err := Classify(ctx, s, remotePath)
	if err != nil {
		return err
	}

	t := NewTransferer(s, e.local, e.logger)

	if k == File {
		return t.CopyFile(ctx, remotePath, localPath, Download)
	}

	e.logger.Info("Downloading directory", "transfer", remotePath+" -> "+localPath)

	return WalkRemote(ctx, s, remotePath, func(dir string, files []string) error {
		ldir := filepath.Join(localPath, filepath.FromSlash(RelativeOffset(remotePath, dir)))

		if err := t.mkdirLocal(ldir); err != nil {
			return err
		}

		for _, f := range files {
			if err := t.get(ctx, JoinRemote(dir, f), filepath.Join(ldir, f)); err != nil {
				return err
			}
		}

		return nil
	})
}

func (e *Engine) openSession(ctx context.Context) (types.Session, error) {
	s, err := e.open(ctx)
	if err != nil {
		return nil, newError(ErrSessionFailure, "open", "", err)
	}

	return s, nil
}

func closeSession(s types.Session) error {
	if err := s.Close(); err != nil {
		return newError(ErrSessionFailure, "close", "", err)
	}

	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
