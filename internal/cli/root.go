// Package cli implements the quillsign-client command line interface for
// driving a quillsign server over its HTTP API.
package cli

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillsign/quillsign/internal/config"
	"github.com/quillsign/quillsign/internal/logger"
	"github.com/quillsign/quillsign/internal/version"
)

var (
	cfg       *config.ClientEnvironment
	appLogger *slog.Logger
	client    *apiClient
)

var rootCmd = &cobra.Command{
	Use:               "quillsign-client",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "quillsign document signing CLI",
	Long:              `CLI for managing documents and signing workflows on a quillsign server`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewClientConfig()
		if err != nil {
			log.Printf("failed to load configuration: %v", err.Error())
			return err
		}

		appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), "dev")
		client = newAPIClient(cfg)
		return nil
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(signerCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(declineCmd)
	rootCmd.AddCommand(statusCmd)
}
