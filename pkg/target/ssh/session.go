package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/pkg/sftp"
	"go.uber.org/multierr"

	"github.com/seal-io/sftpsync/pkg/target/types"
	"github.com/seal-io/sftpsync/utils/bytespool"
)

// Open starts the SFTP subsystem on a new SSH session,
// it satisfies types.SessionOpener.
func (h *Host) Open(ctx context.Context) (types.Session, error) {
	s, err := h.getSessionWithContext(ctx)
	if err != nil {
		return nil, err
	}

	c, err := func() (*sftp.Client, error) {
		if err = s.RequestSubsystem("sftp"); err != nil {
			return nil, err
		}

		rd, err := s.StdoutPipe()
		if err != nil {
			return nil, err
		}

		wr, err := s.StdinPipe()
		if err != nil {
			return nil, err
		}

		return sftp.NewClientPipe(rd, wr)
	}()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to start SFTP subsystem: %w", err)
	}

	return NewSession(c, s), nil
}

type fileTransport struct {
	client  *sftp.Client
	closers []io.Closer
}

// NewSession wraps the given SFTP client as a types.Session,
// closing the session closes the client and then the given closers.
func NewSession(c *sftp.Client, closers ...io.Closer) types.Session {
	return &fileTransport{
		client:  c,
		closers: closers,
	}
}

func (ft *fileTransport) Close() error {
	err := ft.client.Close()

	for i := range ft.closers {
		err = multierr.Append(err, ft.closers[i].Close())
	}

	return err
}

func (ft *fileTransport) Stat(ctx context.Context, path string) (types.Entry, error) {
	if err := ctx.Err(); err != nil {
		return types.Entry{}, err
	}

	i, err := ft.client.Stat(path)
	if err != nil {
		return types.Entry{}, tagError(err)
	}

	return types.Entry{
		Name:  i.Name(),
		IsDir: i.IsDir(),
	}, nil
}

func (ft *fileTransport) ReadDir(ctx context.Context, path string) ([]types.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	is, err := ft.client.ReadDir(path)
	if err != nil {
		return nil, tagError(err)
	}

	r := make([]types.Entry, len(is))
	for i := range is {
		r[i] = types.Entry{
			Name:  is[i].Name(),
			IsDir: is[i].IsDir(),
		}
	}

	return r, nil
}

func (ft *fileTransport) Mkdir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return tagError(ft.client.Mkdir(path))
}

func (ft *fileTransport) Get(ctx context.Context, from string, to io.Writer) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}

	if to == nil {
		return errors.New("nil local file writer")
	}

	rd, err := ft.client.Open(from)
	if err != nil {
		return tagError(err)
	}

	defer func() { _ = rd.Close() }()

	buf := bytespool.GetBytes()
	defer func() { bytespool.Put(buf) }()

	_, err = io.CopyBuffer(to, rd, buf)

	return err
}

func (ft *fileTransport) Put(ctx context.Context, from io.Reader, to string) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}

	if from == nil {
		return errors.New("nil local file reader")
	}

	wr, err := ft.client.Create(to)
	if err != nil {
		return tagError(err)
	}

	defer func() {
		if cerr := wr.Close(); err == nil {
			err = cerr
		}
	}()

	buf := bytespool.GetBytes()
	defer func() { bytespool.Put(buf) }()

	_, err = io.CopyBuffer(wr, from, buf)

	return err
}

// tagError marks a missing-path failure with types.ErrNotExist,
// any other error is returned as-is.
func tagError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", types.ErrNotExist, err)
	}

	var se *sftp.StatusError
	if errors.As(err, &se) && se.Code == uint32(sftp.ErrSSHFxNoSuchFile) {
		return fmt.Errorf("%w: %w", types.ErrNotExist, err)
	}

	return err
}
