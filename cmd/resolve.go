package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/api"
	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
)

const retryDelay = time.Second

func newResolveCommand() *cobra.Command {
	var (
		attempts uint
		asJSON   bool
	)

	c := &cobra.Command{
		Use:               "resolve <type>",
		Args:              cobra.ExactArgs(1),
		Short:             "Resolves an identity type and verifies all pins",
		Example:           "keypin resolve pgp --attempts 3",
		PersistentPreRunE: initConfigPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveIdentity(cmd, args[0], attempts, asJSON)
		},
	}

	c.Flags().UintVar(&attempts, "attempts", 1, "number of attempts, only transport failures are retried")
	c.Flags().BoolVar(&asJSON, "json", false, "print the identity as JSON")

	return c
}

func resolveIdentity(cmd *cobra.Command, typ string, attempts uint, asJSON bool) error {
	ctx := commandContext(cmd)

	r, err := newResolver(ctx)
	if err != nil {
		return err
	}

	res, err := resolveWithRetry(cmd, r, typ, attempts)
	if err != nil {
		return failure(err)
	}

	out := cmd.OutOrStdout()

	if asJSON {
		return printJSON(out, res)
	}

	printIdentity(out, res)

	return nil
}

func resolveWithRetry(cmd *cobra.Command, r identityResolver, typ string, attempts uint) (*identity.ResolvedIdentity, error) {
	ctx := commandContext(cmd)

	if attempts == 0 {
		attempts = 1
	}

	var res *identity.ResolvedIdentity

	err := retry.Do(
		func() error {
			var err error
			res, err = r.Resolve(ctx, typ)

			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Log().Warnf("attempt %d/%d failed: %s", n+1, attempts, err)
		}),
	)

	return res, err
}

func isRetryable(err error) bool {
	var e *model.Error

	return errors.As(err, &e) && e.Retryable()
}

// failure prefixes the reason shown to users, the error chain stays intact
func failure(err error) error {
	return fmt.Errorf("%s%w", api.ErrorPrefix, err)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func printIdentity(out io.Writer, res *identity.ResolvedIdentity) {
	fmt.Fprintf(out, "type:        %s\n", res.Type)
	fmt.Fprintf(out, "version:     %s\n", res.VersionUsed)
	fmt.Fprintf(out, "domain:      %s\n", res.Domain)
	fmt.Fprintf(out, "key url:     %s\n", res.PublicKeyURL)
	fmt.Fprintf(out, "key sha256:  %s\n", res.PublicKeyDigest)

	if res.Fingerprint != "" {
		fmt.Fprintf(out, "fingerprint: %s\n", res.Fingerprint)
	}

	if res.Algorithm != "" {
		fmt.Fprintf(out, "algorithm:   %s\n", res.Algorithm)
	}

	if res.DegradedTrust {
		fmt.Fprintln(out, "trust:       degraded, confirmed by a single DoH provider")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.TrimSpace(res.PublicKeyText))
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "types",
		Args:              cobra.NoArgs,
		Short:             "Lists the identity types of the schemas document",
		PersistentPreRunE: initConfigPreRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			r, err := newResolver(ctx)
			if err != nil {
				return err
			}

			types, err := r.Types(ctx)
			if err != nil {
				return failure(err)
			}

			for _, t := range types {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}

			return nil
		},
	}
}
