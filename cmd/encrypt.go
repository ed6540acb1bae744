package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/keymaterial"
	"github.com/masiarekpl/keypin/log"
)

const maxInputSize = 1024 * 1024

func newEncryptCommand() *cobra.Command {
	var typ string

	c := &cobra.Command{
		Use:               "encrypt",
		Args:              cobra.NoArgs,
		Short:             "Encrypts stdin to the resolved PGP key",
		Example:           "echo hello | keypin encrypt > message.asc",
		PersistentPreRunE: initConfigPreRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return encrypt(cmd, typ)
		},
	}

	c.Flags().StringVar(&typ, "type", identity.TypePGP, "identity type of the key")

	return c
}

func encrypt(cmd *cobra.Command, typ string) error {
	if typ != identity.TypePGP {
		return fmt.Errorf("identity type '%s' can't encrypt", log.EscapeInput(typ))
	}

	plaintext, err := readInput(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	r, err := newResolver(ctx)
	if err != nil {
		return err
	}

	res, err := r.Resolve(ctx, typ)
	if err != nil {
		return failure(err)
	}

	if res.DegradedTrust {
		log.Log().Warn("PGP key was confirmed by a single DoH provider")
	}

	ciphertext, err := keymaterial.Encrypt(res.PublicKeyText, plaintext)
	if err != nil {
		return failure(err)
	}

	_, err = io.WriteString(cmd.OutOrStdout(), ciphertext)

	return err
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("can't read input: %w", err)
	}

	if len(data) > maxInputSize {
		return nil, fmt.Errorf("input is larger than %d bytes", maxInputSize)
	}

	if len(data) == 0 {
		return nil, errors.New("input is empty")
	}

	return data, nil
}
