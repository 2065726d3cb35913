package target

import (
	"context"
	"errors"
	"io"

	"github.com/seal-io/sftpsync/pkg/target/ssh"
	"github.com/seal-io/sftpsync/pkg/target/types"
)

type (
	// Host is a connected remote host serving file sessions.
	Host interface {
		io.Closer

		// Open opens a new file session on the host.
		Open(ctx context.Context) (types.Session, error)
	}

	Session = types.Session
	Entry   = types.Entry

	HostOptions     = types.HostOptions
	HostOption      = types.HostOption
	HostOptionAuthn = types.HostOptionAuthn
)

const DefaultTimeout = types.DefaultTimeout

var ErrUnknownHostAuthnType = errors.New("unknown host authn type")

func NewHost(opts HostOptions) (Host, error) {
	if t := opts.Authn.Type; t != "" && t != "ssh" {
		return nil, ErrUnknownHostAuthnType
	}

	h, err := ssh.New(opts)
	if err != nil {
		return nil, err
	}

	return h, nil
}
