package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/pkg/cli"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the perception configuration file.

  perception config init    Write a starter config file
  perception config show    Show the effective configuration`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if _, err := os.Stat(cfg.Path()); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfg.Path())
		}
		if cfg.Transcriber.URL == "" {
			cfg.Transcriber.URL = "http://localhost:8080"
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		cli.PrintSuccess("wrote %s", cfg.Path())
		cli.PrintInfo("set transcriber.url to your whisper server, and classifier.backend to gemini or openai for LLM classification")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		styles := cli.NewStyles(cli.DefaultTheme)

		classifier := cfg.Classifier.Backend
		if classifier == "" {
			classifier = "none"
		}
		if cfg.Classifier.Model != "" {
			classifier += " (" + cfg.Classifier.Model + ")"
		}

		rows := []cli.KV{
			{"Config", cfg.Path()},
			{"Transcriber", valueOr(cfg.Transcriber.URL, "not configured")},
			{"Classifier", classifier},
		}
		if cfg.Classifier.APIKey != "" {
			rows = append(rows, cli.KV{"API key", cli.MaskAPIKey(cfg.Classifier.APIKey)})
		}
		rows = append(rows,
			cli.KV{"Data dir", cfg.DataDir},
			cli.KV{"Serve addr", cfg.Serve.Addr},
		)
		fmt.Println(styles.Summary("Configuration", rows))
		return nil
	},
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
