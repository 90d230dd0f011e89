package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bughunter/bughunter/internal/application"
	"github.com/bughunter/bughunter/internal/config"
)

var cfgFile string
var logger *zap.SugaredLogger
var operator string
var cfg *config.Config
var app *application.Container

var rootCmd = &cobra.Command{
	Use:   "bughunter",
	Short: "Web security scan orchestration & template matching (for lawful testing only)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".bughunter")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()

		var err error
		cfg, err = config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}

		// create results dir if not exists
		if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
			return fmt.Errorf("failed to create results directory: %s", err.Error())
		}

		// init logger
		l, _ := zap.NewProduction()
		logger = l.Sugar()

		// ensure operator is set (via flag or env default)
		if operator == "" {
			if env := os.Getenv("USER"); env != "" {
				operator = env
			} else if env := os.Getenv("LOGNAME"); env != "" {
				operator = env
			}
		}
		if operator == "" {
			return fmt.Errorf("operator identity is required (use --operator or set USER env)")
		}

		// Make final resultsDir absolute (for clarity in logs)
		if abs, err := filepath.Abs(cfg.ResultsDir); err == nil {
			cfg.ResultsDir = abs
		}

		app, err = application.NewContainer(cfg, logger)
		if err != nil {
			return err
		}

		logger.Infof("operator=%s results_dir=%s templates=%d", operator, cfg.ResultsDir, app.Catalog.Len())

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bughunter.yaml)")

	// operator persistent flag (default from USER env)
	defaultOperator := os.Getenv("USER")

	rootCmd.PersistentFlags().StringVarP(&operator, "operator", "o", defaultOperator, "operator name (or set via USER env)")

	// add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
