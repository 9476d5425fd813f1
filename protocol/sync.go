package protocol

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/datazip-inc/tap-monday/destination"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils"
	"github.com/datazip-inc/tap-monday/utils/logger"
	"github.com/datazip-inc/tap-monday/utils/safego"
)

// syncCmd runs a sync of the selected streams
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "sync command",
	Long:  `Sync command emits SCHEMA, RECORD and STATE messages of every selected stream to stdout`,
	Example: `
// Base command:
tap-monday sync --config path/to/config.json

// With catalog and state:
tap-monday sync --config path/to/config.json --catalog path/to/catalog.json --state path/to/state.json --state-output path/to/state.json
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd.Context())
	},
}

func loadCatalog() (*types.Catalog, error) {
	path := viper.GetString(constants.CatalogPath)
	if path == "" {
		return nil, nil
	}
	catalog := &types.Catalog{}
	if err := utils.UnmarshalFile(path, catalog, false); err != nil {
		return nil, &types.ConfigurationError{Err: err}
	}
	return catalog, nil
}

func loadState() (*types.State, error) {
	state := types.NewState()
	path := viper.GetString(constants.StatePath)
	if path == "" {
		return state, nil
	}
	if err := utils.UnmarshalFile(path, state, false); err != nil {
		return nil, &types.ConfigurationError{Err: err}
	}
	if state.Version > constants.LatestStateVersion {
		return nil, &types.ConfigurationError{Err: fmt.Errorf("state version %d is newer than supported version %d", state.Version, constants.LatestStateVersion)}
	}
	return state.Initialize(), nil
}

func runSync(ctx context.Context) error {
	if err := loadConfig(); err != nil {
		return err
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	state, err := loadState()
	if err != nil {
		return err
	}
	if err := connector.Setup(ctx); err != nil {
		return err
	}

	options := []destination.WriterOption{}
	if stateOutputPath != "" {
		options = append(options, destination.WithStatePath(stateOutputPath))
	}
	writer := destination.NewWriter(output, options...)

	errCh := make(chan error, 1)
	safego.Run(func() error {
		_, err := connector.Read(ctx, catalog, state, writer)
		return err
	}, errCh)
	readErr := <-errCh

	if err := writer.Close(); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		return readErr
	}

	logger.Infof("sync completed, %d records emitted", writer.TotalRecords())
	return nil
}
