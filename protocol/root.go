package protocol

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/datazip-inc/tap-monday/destination"
	"github.com/datazip-inc/tap-monday/drivers/abstract"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils"
	"github.com/datazip-inc/tap-monday/utils/logger"
)

var (
	configPath      string
	catalogPath     string
	statePath       string
	stateOutputPath string
	encryptionKey   string
	logLevel        string
	logFile         string
	noColor         bool
	discoverMode    bool

	// output receives protocol messages, logs never go here
	output io.Writer = os.Stdout

	commands  = []*cobra.Command{}
	connector *abstract.AbstractDriver
)

// RootCmd represents the base command when called without any subcommands.
// Without a subcommand it behaves like a Singer tap: --discover prints the
// catalog, anything else runs a sync.
var RootCmd = &cobra.Command{
	Use:   constants.TapName,
	Short: "Singer tap for the monday.com GraphQL API",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !utils.IsValidSubcommand(commands, args[0]) {
			return fmt.Errorf("'%s' is an invalid command. Use '%s --help' to display usage guide", args[0], constants.TapName)
		}
		return nil
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// set global variables
		viper.Set(constants.CatalogPath, catalogPath)
		viper.Set(constants.StatePath, statePath)
		viper.Set(constants.LogLevel, logLevel)
		viper.Set(constants.LogFile, logFile)
		viper.Set(constants.NoColor, noColor)
		if encryptionKey != "" {
			viper.Set(constants.EncryptionKey, encryptionKey)
		}

		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configPath == "" {
			if discoverMode || catalogPath != "" || statePath != "" || stateOutputPath != "" {
				return &types.ConfigurationError{Err: fmt.Errorf("--config not passed")}
			}
			// stdout carries protocol messages only
			_, err := fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return err
		}
		if discoverMode {
			return runDiscover(cmd.Context())
		}
		return runSync(cmd.Context())
	},
}

func CreateRootCommand(_ bool, driver abstract.DriverInterface) *cobra.Command {
	if !RootCmd.HasSubCommands() {
		RootCmd.AddCommand(commands...)
	}
	connector = abstract.NewAbstractDriver(RootCmd.Context(), driver)

	return RootCmd
}

// loadConfig reads --config into the driver config; the file may be encrypted
func loadConfig() error {
	if configPath == "" {
		return &types.ConfigurationError{Err: fmt.Errorf("--config not passed")}
	}
	if err := utils.UnmarshalFile(configPath, connector.GetConfigRef(), true); err != nil {
		return &types.ConfigurationError{Err: err}
	}
	return nil
}

// emit writes a single protocol message to output
func emit(msg *types.Message) error {
	writer := destination.NewWriter(output)
	if err := writer.Message(msg); err != nil {
		return err
	}
	return writer.Close()
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "", "(Required) Config for connector, JSON or YAML")
	RootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "", "", "(Optional) Catalog selecting the streams to sync, defaults to every stream")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State of a previous sync to resume from")
	RootCmd.PersistentFlags().StringVarP(&stateOutputPath, "state-output", "", "", "(Optional) File the latest state is persisted to after every checkpoint")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key or a custom string used for local encryption.")
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "(Optional) Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&logFile, "log-file", "", "", "(Optional) Additionally write logs to this rotating file")
	RootCmd.PersistentFlags().BoolVarP(&noColor, "no-color", "", false, "(Optional) Disable colored log output")
	RootCmd.Flags().BoolVarP(&discoverMode, "discover", "", false, "Run discovery and print the catalog")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
