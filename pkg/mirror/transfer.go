package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

type Direction int

const (
	Upload Direction = iota
	Download
)

func (d Direction) String() string {
	switch d {
	case Upload:
		return "upload"
	case Download:
		return "download"
	}

	return "unknown"
}

const localDirPerm = 0o755

// Transferer copies single files between the local filesystem and the session.
type Transferer struct {
	session      types.Session
	local        billy.Filesystem
	materializer *Materializer
	logger       *slog.Logger
}

func NewTransferer(s types.Session, local billy.Filesystem, logger *slog.Logger) *Transferer {
	if logger == nil {
		logger = discardLogger()
	}

	return &Transferer{
		session:      s,
		local:        local,
		materializer: NewMaterializer(s, logger),
		logger:       logger,
	}
}

// CopyFile copies from into to in the given direction,
// creating the parent directory of to first.
func (t *Transferer) CopyFile(ctx context.Context, from, to string, d Direction) error {
	switch d {
	case Upload:
		if err := t.materializer.Ensure(ctx, path.Dir(to)); err != nil {
			return err
		}

		return t.put(ctx, from, to)
	case Download:
		if err := t.mkdirLocal(filepath.Dir(to)); err != nil {
			return err
		}

		return t.get(ctx, from, to)
	}

	return fmt.Errorf("unknown transfer direction %d", d)
}

func (t *Transferer) mkdirLocal(dir string) error {
	if i, err := t.local.Stat(dir); err == nil && i.IsDir() {
		return nil
	}

	t.logger.Info("Creating local directory", "path", dir)

	if err := t.local.MkdirAll(dir, localDirPerm); err != nil {
		return newError(ErrDirectoryCreationFailed, "mkdir", dir, err)
	}

	return nil
}

func (t *Transferer) put(ctx context.Context, from, to string) (err error) {
	t.logger.Info("Uploading file", "transfer", from+" -> "+to)

	rd, err := t.local.Open(from)
	if err != nil {
		return newError(ErrTransferFailed, "open", from, err)
	}

	defer func() { _ = rd.Close() }()

	if err = t.session.Put(ctx, rd, to); err != nil {
		return newError(ErrTransferFailed, "put", to, err)
	}

	return nil
}

func (t *Transferer) get(ctx context.Context, from, to string) (err error) {
	t.logger.Info("Downloading file", "transfer", from+" -> "+to)

	wr, err := t.local.Create(to)
	if err != nil {
		return newError(ErrTransferFailed, "create", to, err)
	}

	defer func() {
		if cerr := wr.Close(); err == nil && cerr != nil {
			err = newError(ErrTransferFailed, "close", to, cerr)
		}
	}()

	if err = t.session.Get(ctx, from, wr); err != nil {
		return newError(ErrTransferFailed, "get", from, err)
	}

	return nil
}
