package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/log"
)

// NewValidateCommand creates new command instance
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Args:  cobra.NoArgs,
		Short: "Validates the configuration",
		RunE:  validateConfiguration,
	}
}

func validateConfiguration(_ *cobra.Command, _ []string) error {
	if configPath == defaultConfigPath {
		if val, present := os.LookupEnv(configFileEnvVar); present {
			configPath = val
		}
	}

	log.Log().Infof("Validating configuration file: %s", configPath)

	_, err := os.Stat(configPath)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return errors.New("configuration path does not exist")
	}

	c, err := config.LoadConfig(configPath, true)
	if err != nil {
		return err
	}

	if err := c.RequireMetaDomain(); err != nil {
		return err
	}

	log.Log().Info("Configuration is valid")

	return nil
}
