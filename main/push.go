package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ngrsoftlab/ftppush"
	"github.com/ngrsoftlab/ftppush/config"
	"github.com/ngrsoftlab/ftppush/local"
	"github.com/ngrsoftlab/ftppush/logging"
	"github.com/ngrsoftlab/ftppush/secret"
	"github.com/ngrsoftlab/ftppush/transport"
)

// pushFlags mirrors the config keys that can be overridden on the command line
type pushFlags struct {
	configPath string

	host     string
	port     int
	user     string
	password string
	timeout  int
	useSSH   bool
	local    bool

	sourceDir       string
	remoteDir       string
	createRemoteDir bool
	deleteLocal     bool
	removeExisting  bool

	sshKey        string
	sshPassphrase string
	knownHosts    string
	sshAgent      bool

	logLevel string
	noRedact bool
}

func newPushCmd(f *pushFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push [flags] [file...]",
		Short: "Upload files to the remote directory",
		Long: "Upload every source file (arguments, or transfer.source_files from --config) in order.\n" +
			"A failed file never stops the ones after it; the exit status is 1 when any file failed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, args)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return push(ctx, cfg, newDialer(cfg, log), log)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file; flags override its values")
	fl.StringVar(&f.host, "host", "", "remote host (the target directory with --local)")
	fl.IntVar(&f.port, "port", 0, "remote port (default 21 for FTP, 22 for SFTP)")
	fl.StringVarP(&f.user, "user", "u", "", "remote user")
	fl.StringVar(&f.password, "password", "", "remote password; looked up in the OS keyring when empty")
	fl.IntVar(&f.timeout, "timeout", config.DefaultTimeoutSeconds, "network timeout in seconds")
	fl.BoolVar(&f.useSSH, "ssh", false, "use SFTP instead of FTP")
	fl.BoolVar(&f.local, "local", false, "copy into the local directory given by --host")
	fl.StringVar(&f.sourceDir, "source-dir", "", "base directory for relative source files")
	fl.StringVar(&f.remoteDir, "remote-dir", "", "remote directory (default: the login directory)")
	fl.BoolVar(&f.createRemoteDir, "create-remote-dir", true, "create the remote directory when missing")
	fl.BoolVar(&f.deleteLocal, "delete-local", false, "delete each local file after its upload")
	fl.BoolVar(&f.removeExisting, "remove-existing", false, "remove a remote file of the same name before the upload")
	fl.StringVar(&f.sshKey, "ssh-key", "", "private key file for SFTP")
	fl.StringVar(&f.sshPassphrase, "ssh-passphrase", "", "passphrase of --ssh-key")
	fl.StringVar(&f.knownHosts, "known-hosts", "", "known_hosts file; host keys are not checked without it")
	fl.BoolVar(&f.sshAgent, "ssh-agent", false, "authenticate with the agent at SSH_AUTH_SOCK")
	fl.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "trace, debug, info, warning, error")
	fl.BoolVar(&f.noRedact, "no-redact", false, "write resolved secrets to the log")

	return cmd
}

// loadConfig layers defaults, the config file, then flags the user actually set
func loadConfig(cmd *cobra.Command, f *pushFlags, args []string) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Remote.Host = f.host
	}
	if changed("port") {
		cfg.Remote.Port = f.port
	}
	if changed("user") {
		cfg.Remote.User = f.user
	}
	if changed("password") {
		cfg.Remote.Password = f.password
	}
	if changed("timeout") {
		cfg.Remote.TimeoutSeconds = f.timeout
	}
	if changed("ssh") {
		cfg.Remote.UseSSH = f.useSSH
	}
	if changed("local") {
		cfg.Remote.Local = f.local
	}
	if changed("source-dir") {
		cfg.Transfer.SourceDir = f.sourceDir
	}
	if changed("remote-dir") {
		cfg.Transfer.RemoteDir = f.remoteDir
	}
	if changed("create-remote-dir") {
		cfg.Transfer.CreateRemoteDir = f.createRemoteDir
	}
	if changed("delete-local") {
		cfg.Transfer.DeleteLocal = f.deleteLocal
	}
	if changed("remove-existing") {
		cfg.Transfer.RemoveExisting = f.removeExisting
	}
	if changed("ssh-key") {
		cfg.SSH.KeyPath = f.sshKey
	}
	if changed("ssh-passphrase") {
		cfg.SSH.Passphrase = f.sshPassphrase
	}
	if changed("known-hosts") {
		cfg.SSH.KnownHosts = f.knownHosts
	}
	if changed("ssh-agent") {
		cfg.SSH.Agent = f.sshAgent
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("no-redact") {
		cfg.Log.Redact = !f.noRedact
	}
	if len(args) > 0 {
		cfg.Transfer.SourceFiles = args
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDialer picks the local mirror or the network transports
func newDialer(cfg *config.Config, log logrus.FieldLogger) ftppush.Dialer {
	if cfg.Remote.Local {
		return local.Dialer{}
	}
	resolver := secret.NewResolver(secret.Keyring{}, log, secret.WithRedaction(cfg.Log.Redact))
	return transport.NewFactory(resolver,
		transport.WithLogger(log),
		transport.WithSSHOptions(cfg.SSHOptions()...),
		transport.WithFTPOptions(cfg.FTPOptions()...),
	)
}

// push runs every configured upload and returns the batch error, if any
func push(ctx context.Context, cfg *config.Config, dialer ftppush.Dialer, log logrus.FieldLogger) error {
	uploader := ftppush.NewUploader(dialer, ftppush.WithLogger(log))
	progress := func(source string) ftppush.ProgressFunc {
		return progressLogger(log.WithField("source", source))
	}
	report := ftppush.NewDriver(uploader, log).Run(ctx, cfg.Requests(progress))
	return report.Err()
}

// progressLogger logs one transfer once per completed quarter
func progressLogger(log logrus.FieldLogger) ftppush.ProgressFunc {
	var last int64 = -1
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		quarter := written * 4 / total
		if quarter != last {
			last = quarter
			log.Debugf("transferred %d of %d bytes", written, total)
		}
	}
}
