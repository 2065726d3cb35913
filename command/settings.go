package command

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seal-io/sftpsync/pkg/target"
	"github.com/seal-io/sftpsync/utils/osx"
)

const envPrefix = "SFTPSYNC"

// Settings are the connection settings merged from flags, environment and config file,
// in that order of precedence.
type Settings struct {
	Host       string
	Port       int
	Username   string
	Password   string
	PrivateKey string
	Passphrase string
	KnownHosts string
	Timeout    time.Duration
	Insecure   bool
	Agent      bool
	Proxies    []string
}

var settingFlags = map[string]string{
	"host":        "host",
	"port":        "port",
	"username":    "username",
	"password":    "password",
	"private_key": "private-key",
	"passphrase":  "passphrase",
	"known_hosts": "known-hosts",
	"timeout":     "timeout",
	"insecure":    "insecure",
	"agent":       "agent",
	"proxies":     "proxy",
}

func addSettingFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.SortFlags = false
	fs.String("host", "", "SFTP server host")
	fs.Int("port", 22, "SFTP server port")
	fs.StringP("username", "u", "", "SFTP username")
	fs.String("password", "", "SFTP password")
	fs.StringP("private-key", "i", "", "Path to a private key file for authentication")
	fs.String("passphrase", "", "Passphrase for the private key, if required")
	fs.String("known-hosts", "", "Path to known hosts file for host key verification")
	fs.Float64("timeout", target.DefaultTimeout.Seconds(), "Connection timeout in seconds")
	fs.Bool("insecure", false, "Skip host key verification")
	fs.Bool("agent", false, "Authenticate with the SSH agent at $SSH_AUTH_SOCK")
	fs.StringSlice("proxy", nil, "Proxy to connect through, "+
		"like socks5://host:1080, http://host:3128 or ssh://user@bastion:22, repeatable")
	fs.StringP("config", "c", "", "Path to JSON configuration file with connection settings")
	fs.BoolP("verbose", "v", false, "Log every step")
}

func loadSettings(cmd *cobra.Command) (Settings, error) {
	v := viper.New()

	if p, _ := cmd.Flags().GetString("config"); p != "" {
		p, err := osx.ExpandPath(p)
		if err != nil {
			return Settings{}, err
		}

		if !osx.Exists(p) {
			return Settings{}, fmt.Errorf("config file not found: %s", p)
		}

		v.SetConfigFile(p)
		v.SetConfigType("json")

		if err = v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to parse JSON config %s: %w", p, err)
		}
	}

	for k, f := range settingFlags {
		if err := v.BindPFlag(k, cmd.Flags().Lookup(f)); err != nil {
			return Settings{}, fmt.Errorf("failed to bind flag %s: %w", f, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	s := Settings{
		Host:       v.GetString("host"),
		Port:       v.GetInt("port"),
		Username:   v.GetString("username"),
		Password:   v.GetString("password"),
		PrivateKey: v.GetString("private_key"),
		Passphrase: v.GetString("passphrase"),
		KnownHosts: v.GetString("known_hosts"),
		Timeout:    time.Duration(v.GetFloat64("timeout") * float64(time.Second)),
		Insecure:   v.GetBool("insecure"),
		Agent:      v.GetBool("agent"),
		Proxies:    v.GetStringSlice("proxies"),
	}

	return s, s.Validate()
}

func (s Settings) Validate() error {
	var missing []string

	if s.Host == "" {
		missing = append(missing, "host")
	}

	if s.Username == "" {
		missing = append(missing, "username")
	}

	if len(missing) != 0 {
		return fmt.Errorf("missing required connection options: %s", strings.Join(missing, ", "))
	}

	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}

	if s.Timeout < 0 {
		return errors.New("negative timeout")
	}

	return nil
}

// HostOptions converts the settings into the options to dial the host with,
// file paths are expanded.
func (s Settings) HostOptions() (opts target.HostOptions, err error) {
	opts.HostOption = target.HostOption{
		Address:  net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Insecure: s.Insecure,
		Timeout:  s.Timeout,
		Authn: target.HostOptionAuthn{
			Type:       "ssh",
			User:       s.Username,
			Secret:     s.Password,
			Passphrase: s.Passphrase,
			Agent:      s.Agent,
		},
	}

	if s.PrivateKey != "" {
		opts.Authn.KeyFile, err = osx.ExpandPath(s.PrivateKey)
		if err != nil {
			return opts, err
		}
	}

	if s.KnownHosts != "" {
		opts.KnownHosts, err = osx.ExpandPath(s.KnownHosts)
		if err != nil {
			return opts, err
		}
	}

	for _, p := range s.Proxies {
		po, err := parseProxy(p, opts.HostOption)
		if err != nil {
			return opts, err
		}

		opts.Proxies = append(opts.Proxies, po)
	}

	return opts, nil
}

// parseProxy turns a proxy URL into a hop,
// an SSH bastion without credentials borrows them from the target.
func parseProxy(raw string, base target.HostOption) (target.HostOption, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return target.HostOption{}, fmt.Errorf("invalid proxy %q", raw)
	}

	o := target.HostOption{
		Insecure:   base.Insecure,
		KnownHosts: base.KnownHosts,
		Timeout:    base.Timeout,
	}

	user := u.User.Username()
	password, hasPassword := u.User.Password()

	switch u.Scheme {
	default:
		return target.HostOption{}, fmt.Errorf("unknown proxy scheme %q", u.Scheme)
	case "http", "https", "socks5", "socks5h":
		o.Address = u.Scheme + "://" + u.Host
		o.Authn = target.HostOptionAuthn{
			Type:   "proxy",
			User:   user,
			Secret: password,
		}
	case "ssh":
		o.Address = u.Host
		o.Authn = base.Authn

		if user != "" {
			o.Authn.User = user
		}

		if hasPassword {
			o.Authn.Secret = password
		}
	}

	return o, nil
}
