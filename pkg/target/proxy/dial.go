package proxy

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/seal-io/sftpsync/pkg/target/types"
)

// Dial returns a dialer that tunnels through the given HTTP(S) or SOCKS5 proxy,
// reaching the proxy itself through forward.
func Dial(
	forward types.DialCloser,
	dialHost types.HostOption,
) (types.DialCloser, error) {
	timeout := dialHost.GetTimeout()

	if forward == nil {
		forward = types.Direct(timeout)
	}

	ap, err := dialHost.ParseAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy address: %w", err)
	}

	var au *proxy.Auth
	if dialHost.Authn.User != "" {
		au = &proxy.Auth{
			User:     dialHost.Authn.User,
			Password: dialHost.Authn.Secret,
		}
	}

	switch s := ap.Scheme; s {
	default:
		return nil, fmt.Errorf("unknown proxy scheme: %s", ap.Scheme)
	case "http", "https":
		addr := ap.HostPortFunc(func(p types.HostAddressParsed) int {
			if p.Scheme == "https" {
				return 443
			}
			return 80
		})

		// NB: CONNECT tunnel, see RFC 9110 section 9.3.6.
		d := types.DialCloserFunc(
			func(network, address string) (_ net.Conn, err error) {
				n, err := forward.Dial(network, addr)
				if err != nil {
					return nil, err
				}

				defer func() {
					if err != nil {
						_ = n.Close()
					}
				}()

				err = n.SetDeadline(time.Now().Add(timeout))
				if err != nil {
					return nil, err
				}

				req := &http.Request{
					Method: http.MethodConnect,
					URL:    &url.URL{Opaque: address},
					Host:   address,
					Header: make(http.Header),
				}

				if au != nil {
					req.SetBasicAuth(au.User, au.Password)
					req.Header.Add(
						"Proxy-Authorization",
						req.Header.Get("Authorization"),
					)
				}

				err = req.Write(n)
				if err != nil {
					return nil, err
				}

				resp, err := http.ReadResponse(bufio.NewReader(n), req)
				if err != nil {
					return nil, err
				}

				defer func() { _ = resp.Body.Close() }()

				if resp.StatusCode != http.StatusOK {
					return nil, fmt.Errorf(
						"failed to connect %s via %s: status code: %d",
						address,
						addr,
						resp.StatusCode,
					)
				}

				// Clear the handshake deadline, the tunnel lives as long as the session.
				err = n.SetDeadline(time.Time{})
				if err != nil {
					return nil, err
				}

				return n, nil
			},
		)

		return d, nil
	case "socks5", "socks5h":
		addr := ap.HostPort(1080)

		d, err := proxy.SOCKS5("tcp", addr, au, forward)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to create Socks5 proxy: %w",
				err,
			)
		}

		return types.NoClose(d), nil
	}
}
