package main

import (
	"fmt"
	"time"

	"study-quiz/internal/client"
	"study-quiz/internal/config"
	"study-quiz/internal/view"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "quizcli",
	Short:         "Terminal client for the study quiz server",
	Long:          "quizcli asks the study quiz server for a quiz and lets you answer it in the terminal.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the known study subjects",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range view.KnownSubjects {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up and has a model configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		health, err := c.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "status: %s\nllm configured: %t\n", health.Status, health.LLMConfigured)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Quiz server base URL (defaults to server.api_base_url from config)")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "Request timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(healthCmd)
}

// newClient resolves the server URL from --server, then the config file
// and environment.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		return client.New(server, timeout), nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return client.New(cfg.Server.APIBaseURL, timeout), nil
}
