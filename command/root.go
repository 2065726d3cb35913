package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/seal-io/sftpsync/pkg/mirror"
	"github.com/seal-io/sftpsync/pkg/target"
	"github.com/seal-io/sftpsync/utils/osx"
)

type (
	// HostDialer connects the remote host described by the options.
	HostDialer func(opts target.HostOptions) (target.Host, error)

	runner struct {
		dial  HostDialer
		local billy.Filesystem
	}
)

// NewRootCommand returns the sftpsync command,
// it works on the local filesystem and dials hosts over SSH.
func NewRootCommand() *cobra.Command {
	return newRootCommand(runner{
		dial:  target.NewHost,
		local: osfs.New("/"),
	})
}

func newRootCommand(r runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sftpsync",
		Short: "Unified SFTP upload/download tool",
		Long: "Upload or download single files or entire directory trees via SFTP.\n" +
			"Connection settings come from flags, SFTPSYNC_* environment variables " +
			"or a JSON configuration file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addSettingFlags(cmd)

	cmd.AddCommand(
		r.newTransferCommand(mirror.Upload),
		r.newTransferCommand(mirror.Download),
	)

	return cmd
}

func (r runner) newTransferCommand(d mirror.Direction) *cobra.Command {
	short := "Upload a local file or directory to the remote path"
	if d == mirror.Download {
		short = "Download a remote file or directory to the local path"
	}

	return &cobra.Command{
		Use:   d.String() + " LOCAL_PATH REMOTE_PATH",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			logger := newLogger(cmd.ErrOrStderr(), verbose)

			localPath, err := osx.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve local path %s: %w", args[0], err)
			}

			return r.run(cmd.Context(), logger, s, d, localPath, args[1])
		},
	}
}

func (r runner) run(
	ctx context.Context,
	logger *slog.Logger,
	s Settings,
	d mirror.Direction,
	localPath, remotePath string,
) (err error) {
	opts, err := s.HostOptions()
	if err != nil {
		return err
	}

	logger.Debug("Connecting", "address", opts.Address, "user", opts.Authn.User, "proxies", len(opts.Proxies))

	h, err := r.dial(opts)
	if err != nil {
		return fmt.Errorf("unable to connect to %s: %w", opts.Address, err)
	}

	defer func() { err = multierr.Append(err, h.Close()) }()

	e := mirror.New(h.Open, r.local, mirror.WithLogger(logger))

	switch d {
	case mirror.Upload:
		return e.Upload(ctx, localPath, remotePath)
	default:
		return e.Download(ctx, remotePath, localPath)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}
