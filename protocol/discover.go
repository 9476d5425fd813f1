package protocol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils/logger"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDiscover(cmd.Context())
	},
}

// runDiscover validates the credentials and prints the catalog of every stream
func runDiscover(ctx context.Context) error {
	startTime := time.Now()
	if err := loadConfig(); err != nil {
		return err
	}
	if err := connector.Setup(ctx); err != nil {
		return err
	}
	if err := connector.Check(ctx); err != nil {
		return err
	}

	streams, err := connector.Discover(ctx)
	if err != nil {
		return err
	}
	if len(streams) == 0 {
		return errors.New("no streams found in connector")
	}

	catalog := types.GetWrappedCatalog(streams)
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %s", err)
	}
	if _, err := fmt.Fprintln(output, string(data)); err != nil {
		return err
	}

	logger.Infof("discovered %d streams in %s", len(streams), time.Since(startTime).Round(time.Millisecond))
	return nil
}
