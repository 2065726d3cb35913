package mirror

import (
	"context"
	"errors"
	"log/slog"
	"path"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

// Materializer creates remote directories level by level.
type Materializer struct {
	session types.Session
	logger  *slog.Logger
}

func NewMaterializer(s types.Session, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = discardLogger()
	}

	return &Materializer{
		session: s,
		logger:  logger,
	}
}

// Ensure makes sure the given remote directory exists,
// creating every missing ancestor from the top down.
//
// An existing entry is trusted to be a directory,
// a file squatting on a component surfaces only when creating below it.
func (m *Materializer) Ensure(ctx context.Context, dir string) error {
	if isRoot(dir) {
		return nil
	}

	var chain []string
	for d := path.Clean(dir); !isRoot(d); d = path.Dir(d) {
		chain = append(chain, d)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		d := chain[i]

		_, err := m.session.Stat(ctx, d)
		if err == nil {
			continue
		}

		if !errors.Is(err, types.ErrNotExist) {
			return newError(ErrSessionFailure, "stat", d, err)
		}

		m.logger.Info("Creating remote directory", "path", d)

		if err = m.session.Mkdir(ctx, d); err != nil {
			return newError(ErrDirectoryCreationFailed, "mkdir", d, err)
		}
	}

	return nil
}

func isRoot(p string) bool {
	return p == "" || p == "." || p == "/"
}
