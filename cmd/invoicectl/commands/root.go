package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niiboye001/genesis-invoice/internal/config"
	"github.com/niiboye001/genesis-invoice/internal/container"
	"github.com/niiboye001/genesis-invoice/pkg/utils"
)

var (
	configPath string
	driver     string
	dataDir    string
	logLevel   string

	app    *container.Container
	logger *utils.Logger
)

// Execute runs the CLI with os.Args
func Execute() error {
	err := NewRootCmd().Execute()
	if closeErr := closeApp(); err == nil {
		err = closeErr
	}
	return err
}

// closeApp releases the container started by the root command, if any
func closeApp() error {
	if app == nil {
		return nil
	}
	err := app.Close()
	_ = logger.Close()
	app, logger = nil, nil
	return err
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	configPath, driver, dataDir, logLevel = "", "", "", ""
	app, logger = nil, nil

	root := &cobra.Command{
		Use:          "invoicectl",
		Short:        "Manage Genesis invoices from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if driver != "" {
				cfg.Store.Driver = driver
			}
			if dataDir != "" {
				cfg.Store.Dir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// Log to stderr so command output stays clean
			level := cfg.Logger.Level
			if logLevel != "" {
				level = logLevel
			}
			logger = utils.NewWriterLogger(utils.LoggerConfig{Level: level, Format: "console"}, cmd.ErrOrStderr())

			app, err = container.NewContainer(cfg.ToContainerConfig(), logger.Logger)
			if err != nil {
				return err
			}
			return app.Start(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.yaml when present)")
	root.PersistentFlags().StringVar(&driver, "driver", "", "override store.driver")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override store.dir for the file driver")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		listCmd(),
		showCmd(),
		deleteCmd(),
		togglePaidCmd(),
		exportCmd(),
		printCmd(),
		numberCmd(),
	)
	return root
}
