package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the nfts configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()

		// Ensure it exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := appConfig.Save(path); err != nil {
				return err
			}
			fmt.Println(ui.FormatInfo("Created default config"))
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))
		return openInEditor(path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(appConfig)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		fmt.Println(ui.FormatTitle("Configuration"))
		fmt.Println(ui.RenderKeyValue("File", configFilePath()))
		fmt.Println(ui.RenderKeyValue("Endpoint", resolveEndpoint()))
		fmt.Println(ui.RenderKeyValue("Token", maskToken(resolveToken())))
		fmt.Println()
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func configFilePath() string {
	if path := appViper.GetString("config"); path != "" {
		return path
	}
	return appWorkspace.ConfigPath
}

// maskToken hides all but the last four characters
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
