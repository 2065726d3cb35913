package types

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type (
	HostOptions struct {
		HostOption

		// Proxies are dialed in order, each one through the previous,
		// before the target itself.
		Proxies []HostOption
	}

	HostOption struct {
		Address  string
		Authn    HostOptionAuthn
		Insecure bool
		// KnownHosts is the path of an OpenSSH known_hosts file,
		// the host key is accepted as-is when it is blank.
		KnownHosts string
		Timeout    time.Duration
	}

	HostOptionAuthn struct {
		Type       string
		User       string
		Secret     string
		KeyFile    string
		Passphrase string
		Agent      bool
	}
)

const DefaultTimeout = 10 * time.Second

func (o HostOption) Validate() error {
	if o.Address == "" {
		return errors.New("no address specified")
	}

	if o.Authn.Type == "ssh" && o.Authn.User == "" {
		return errors.New("no user specified")
	}

	return nil
}

func (o HostOption) GetTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}

	return o.Timeout
}

type HostAddressParsed struct {
	Scheme string
	Host   string
	Port   int
}

func (o HostOption) ParseAddress() (parsed HostAddressParsed, err error) {
	r := o.Address

	if strings.Contains(r, "://") {
		var u *url.URL

		u, err = url.Parse(r)
		if err != nil {
			return
		}

		parsed.Scheme = u.Scheme
		parsed.Host = u.Hostname()

		if p := u.Port(); p != "" {
			parsed.Port, err = strconv.Atoi(p)
		}

		return parsed, err
	}

	parsed.Host = r

	if h, p, _ := net.SplitHostPort(parsed.Host); h != "" {
		parsed.Host = h
		parsed.Port, err = strconv.Atoi(p)
	}

	return parsed, err
}

func (p HostAddressParsed) HostPort(defaultPort int) string {
	return p.HostPortFunc(func(HostAddressParsed) int { return defaultPort })
}

func (p HostAddressParsed) HostPortFunc(defaultPortFunc func(HostAddressParsed) int) string {
	if p.Port <= 0 && defaultPortFunc != nil {
		p.Port = defaultPortFunc(p)
	}

	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}
