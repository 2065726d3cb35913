package testx

import (
	"io"
	"testing"

	"github.com/pkg/sftp"
	"golang.org/x/sync/errgroup"
)

// SFTPServer is an in-memory SFTP server,
// every client it hands out sees the same filesystem.
type SFTPServer struct {
	handlers sftp.Handlers
}

func NewSFTPServer() *SFTPServer {
	return &SFTPServer{
		handlers: sftp.InMemHandler(),
	}
}

// Client connects a new client through in-process pipes,
// the server side is torn down once the client is closed or the test ends.
func (s *SFTPServer) Client(t testing.TB) *sftp.Client {
	t.Helper()

	cr, sw := io.Pipe()
	sr, cw := io.Pipe()

	srv := sftp.NewRequestServer(
		struct {
			io.Reader
			io.WriteCloser
		}{sr, sw},
		s.handlers,
	)

	var g errgroup.Group

	g.Go(func() error {
		defer func() { _ = srv.Close() }()
		return srv.Serve()
	})

	c, err := sftp.NewClientPipe(cr, cw)
	if err != nil {
		_ = srv.Close()
		_ = cw.Close()
		t.Fatalf("error creating sftp client: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Close()
		_ = g.Wait()
	})

	return c
}
