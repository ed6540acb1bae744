package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/resolutionlog"
)

//nolint:gochecknoglobals
var (
	configPath string
	apiHost    string
	apiPort    uint16
	cfg        *config.Config

	// newResolver creates the resolver used by the resolve, types, encrypt and send commands
	newResolver = createResolver
)

const (
	defaultHost       = "localhost"
	defaultPort       = 4000
	defaultConfigPath = config.DefaultConfigFile
	configFileEnvVar  = config.EnvConfigFile
	envFile           = ".env"
)

// identityResolver is what the commands need from identity.Resolver
type identityResolver interface {
	Resolve(ctx context.Context, typ string) (*identity.ResolvedIdentity, error)
	Types(ctx context.Context) ([]string, error)
}

// NewRootCommand creates new root command
func NewRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "keypin",
		Short: "keypin resolves DNS published identity keys",
		Long: `A client for DNS published identity keys.

TXT records are confirmed by two DNS-over-HTTPS providers,
every fetched document is checked against its SHA-256 pin.`,
		PreRunE: initConfigPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	c.PersistentFlags().StringVar(&apiHost, "apiHost", defaultHost, "host of keypin (API). Default overridden by config and CLI.")
	c.PersistentFlags().Uint16Var(&apiPort, "apiPort", defaultPort, "port of keypin (API). Default overridden by config and CLI.")

	c.AddCommand(newResolveCommand(),
		newTypesCommand(),
		newEncryptCommand(),
		newSendCommand(),
		NewVersionCommand(),
		newServeCommand(),
		newCacheCommand(),
		NewValidateCommand())

	return c
}

func apiBaseURL() string {
	return "http://" + net.JoinHostPort(apiHost, strconv.Itoa(int(apiPort)))
}

func apiURL() string {
	return apiBaseURL() + "/api"
}

//nolint:revive
func initConfigPreRun(cmd *cobra.Command, args []string) error {
	return initConfig()
}

func initConfig() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("can't read %s: %w", envFile, err)
	}

	if configPath == defaultConfigPath {
		val, present := os.LookupEnv(configFileEnvVar)
		if present {
			configPath = val
		}
	}

	c, err := config.LoadConfig(configPath, false)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	cfg = c

	log.ConfigureLogger(cfg.Log)

	if cfg.Ports.HTTP != "" {
		host, port, err := net.SplitHostPort(cfg.Ports.HTTP)
		if err != nil {
			return fmt.Errorf("can't parse http address '%s': %w", cfg.Ports.HTTP, err)
		}

		p, err := config.ConvertPort(port)
		if err != nil {
			return fmt.Errorf("can't convert port to number (1 - 65535): %w", err)
		}

		apiPort = p

		if host != "" {
			apiHost = host
		}
	}

	return nil
}

// createResolver writes the resolution log synchronously, the process may exit right after one command
func createResolver(ctx context.Context) (identityResolver, error) {
	auditLog, err := resolutionlog.NewWriter(cfg.ResolutionLog)
	if err != nil {
		return nil, fmt.Errorf("can't create resolution log: %w", err)
	}

	return identity.NewResolver(ctx, cfg, identity.WithAuditLog(auditLog))
}

func printOkOrError(resp *http.Response, body string) error {
	if resp.StatusCode == http.StatusOK {
		log.Log().Info("OK")
	} else {
		return fmt.Errorf("response NOK, %s %s", resp.Status, body)
	}

	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// Execute starts the command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
