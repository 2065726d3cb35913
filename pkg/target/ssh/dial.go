package ssh

import (
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

func Dial(forward types.DialCloser, dialHost types.HostOption) (*ssh.Client, error) {
	ap, err := dialHost.ParseAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to parse address: %w", err)
	}

	auths, err := authMethods(dialHost.Authn)
	if err != nil {
		return nil, err
	}

	hkc, err := hostKeyCallback(dialHost)
	if err != nil {
		return nil, err
	}

	cfg := &ssh.ClientConfig{
		User:            dialHost.Authn.User,
		Auth:            auths,
		HostKeyCallback: hkc,
		Timeout:         dialHost.GetTimeout(),
	}

	addr := ap.HostPort(22)

	if isDirect(forward) {
		return ssh.Dial("tcp", addr, cfg)
	}

	prevConn, err := forward.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s via proxies: %w", addr, err)
	}

	conn, nextCh, nextReq, err := ssh.NewClientConn(prevConn, addr, cfg)
	if err != nil {
		_ = prevConn.Close()
		return nil, fmt.Errorf("failed to create SSH client connection: %w", err)
	}

	return ssh.NewClient(conn, nextCh, nextReq), nil
}

func isDirect(forward types.DialCloser) bool {
	if forward == nil {
		return true
	}

	ds, ok := forward.(types.DialClosers)

	return ok && len(ds) == 0
}

func authMethods(authn types.HostOptionAuthn) ([]ssh.AuthMethod, error) {
	var auths []ssh.AuthMethod

	if authn.Agent {
		agentConn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect SSH agent: %w", err)
		}

		auths = append(auths, ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers))
	}

	if authn.KeyFile != "" {
		bs, err := os.ReadFile(authn.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key %s: %w", authn.KeyFile, err)
		}

		signer, err := parsePrivateKey(bs, authn.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key %s: %w", authn.KeyFile, err)
		}

		auths = append(auths, ssh.PublicKeys(signer))
	}

	if authn.Secret != "" {
		// NB: a PEM block in the secret is an inline private key,
		// anything else is a password.
		if pb, _ := pem.Decode([]byte(authn.Secret)); pb != nil {
			signer, err := parsePrivateKey([]byte(authn.Secret), authn.Passphrase)
			if err != nil {
				return nil, fmt.Errorf("failed to parse private key: %w", err)
			}

			auths = append(auths, ssh.PublicKeys(signer))
		} else {
			auths = append(auths, ssh.Password(authn.Secret))
		}
	}

	if len(auths) == 0 {
		return nil, errors.New("no authentication method specified")
	}

	return auths, nil
}

var ErrPassphraseRequired = errors.New("private key requires a passphrase")

func parsePrivateKey(bs []byte, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(bs, []byte(passphrase))
	}

	signer, err := ssh.ParsePrivateKey(bs)
	if err != nil {
		var pme *ssh.PassphraseMissingError
		if errors.As(err, &pme) {
			return nil, ErrPassphraseRequired
		}

		return nil, err
	}

	return signer, nil
}

func hostKeyCallback(dialHost types.HostOption) (ssh.HostKeyCallback, error) {
	if dialHost.Insecure || dialHost.KnownHosts == "" {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}

	hkc, err := knownhosts.New(dialHost.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts %s: %w", dialHost.KnownHosts, err)
	}

	return hkc, nil
}
