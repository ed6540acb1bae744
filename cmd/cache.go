package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/api"
)

func newCacheCommand() *cobra.Command {
	c := &cobra.Command{
		Use:               "cache",
		Short:             "Performs cache operations of a running server",
		PersistentPreRunE: initConfigPreRun,
	}
	c.AddCommand(&cobra.Command{
		Use:     "flush",
		Args:    cobra.NoArgs,
		Aliases: []string{"clear"},
		Short:   "Flush cached documents and identities",
		RunE:    flushCache,
	})

	return c
}

func flushCache(cmd *cobra.Command, _ []string) error {
	req, err := http.NewRequestWithContext(commandContext(cmd), http.MethodPost, apiBaseURL()+api.PathCacheFlush, nil)
	if err != nil {
		return fmt.Errorf("can't create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("can't execute %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return printOkOrError(resp, string(body))
}
