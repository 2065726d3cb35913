package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"golang.org/x/crypto/ssh"

	"github.com/seal-io/sftpsync/pkg/target/proxy"
	"github.com/seal-io/sftpsync/pkg/target/types"
)

// Host is an established SSH connection, possibly through proxies,
// which opens SFTP sessions on demand.
type Host struct {
	client  *ssh.Client
	proxies types.DialCloser
}

func New(opts types.HostOptions) (*Host, error) {
	if opts.Authn.Type == "" {
		opts.Authn.Type = "ssh"
	}

	if opts.Authn.Type != "ssh" {
		return nil, errors.New("invalid type")
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	proxies, err := proxyWith(types.DialClosers{}, opts.Proxies)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to dial %s via proxies: %w",
			opts.Address,
			err,
		)
	}

	c, err := Dial(proxies, opts.HostOption)
	if err != nil {
		_ = proxies.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", opts.Address, err)
	}

	return &Host{
		client:  c,
		proxies: proxies,
	}, nil
}

func proxyWith(
	pds types.DialClosers,
	dhs []types.HostOption,
) (d types.DialCloser, err error) {
	if len(dhs) == 0 {
		return pds, nil
	}

	da, dhs := dhs[0], dhs[1:]

	switch da.Authn.Type {
	default:
		err = fmt.Errorf("unknown proxy type %q", da.Authn.Type)
	case "ssh":
		d, err = Dial(pds, da)
	case "proxy":
		d, err = proxy.Dial(pds, da)
	}

	if err != nil {
		_ = pds.Close()
		return nil, err
	}

	if pds != nil {
		pds = pds[:len(pds):len(pds)]
	}

	return proxyWith(append(pds, d), dhs)
}

func (h *Host) Close() error {
	return multierr.Append(h.client.Close(), h.proxies.Close())
}

type session struct {
	*ssh.Session
	context.Context

	Cancel context.CancelFunc
}

func (h *Host) getSessionWithContext(
	ctx context.Context,
) (*session, error) {
	s, err := h.client.NewSession()
	if err != nil {
		return nil, err
	}

	_, err = s.SendRequest("keepalive", true, nil)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("disconnected: %w", err)
	}

	sCtx, sCtxCancel := context.WithCancel(ctx)
	cs := &session{
		Session: s,
		Context: sCtx,
		Cancel:  sCtxCancel,
	}

	// Closing the channel fails whatever SFTP request is in flight.
	go func() {
		<-cs.Done()
		_ = s.Close()
	}()

	return cs, nil
}

func (s *session) Close() error {
	defer s.Cancel()

	err := s.Session.Close()
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}
