package types

import (
	"io"
	"net"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/net/proxy"
)

type (
	DialCloser interface {
		io.Closer

		Dial(network, address string) (net.Conn, error)
	}

	// DialClosers is a chain of hops,
	// the last one dials the destination through all the others.
	DialClosers []DialCloser

	// DialCloserFunc is a DialCloser holding nothing to close.
	DialCloserFunc func(network, address string) (net.Conn, error)
)

// Close closes the hops from the innermost to the outermost,
// so that no hop loses its underlying connection before being closed.
func (p DialClosers) Close() (err error) {
	for i := len(p) - 1; i >= 0; i-- {
		err = multierr.Append(err, p[i].Close())
	}

	return
}

// Dial dials through the last hop, or directly without a timeout on an empty chain.
func (p DialClosers) Dial(network, address string) (net.Conn, error) {
	if len(p) == 0 {
		return Direct(0).Dial(network, address)
	}

	return p[len(p)-1].Dial(network, address)
}

func (DialCloserFunc) Close() error {
	return nil
}

func (f DialCloserFunc) Dial(network, address string) (net.Conn, error) {
	return f(network, address)
}

// Direct returns the first hop of a chain,
// a zero timeout leaves the connect time unbounded.
func Direct(timeout time.Duration) DialCloser {
	d := &net.Dialer{Timeout: timeout}
	return DialCloserFunc(d.Dial)
}

// NoClose adapts a dialer owning no connection of its own.
func NoClose(d proxy.Dialer) DialCloser {
	return DialCloserFunc(d.Dial)
}
