package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/nfts-cli/pkg/config"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
	"github.com/kamal-hamza/nfts-cli/pkg/workspace"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the nfts data and config directories",
	Long: `Initialize the nfts workspace.

This creates:
  - ~/.local/share/nfts/          : upload history (history.json)
  - ~/.local/share/nfts/store/    : content served by 'nfts serve'
  - ~/.config/nfts/config.yaml    : configuration

The API token is never written to the config file. Export it instead:
  export NFT_STORAGE_TOKEN=<your token>`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := workspace.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine workspace location"))
		return err
	}

	if ws.Exists() {
		fmt.Println(ui.FormatWarning("Workspace already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + ws.RootPath))
		return nil
	}

	fmt.Println(ui.FormatRocket("Initializing nfts workspace..."))
	fmt.Println()

	if err := ws.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize workspace"))
		return err
	}

	if _, err := os.Stat(ws.ConfigPath); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(ws.ConfigPath); err != nil {
			// Config is optional, defaults apply without it
			fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
		} else {
			fmt.Println(ui.FormatSuccess("Default config created"))
		}
	}

	fmt.Println(ui.FormatSuccess("Workspace initialized successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Data", ws.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", ws.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Export your token: export NFT_STORAGE_TOKEN=..."))
	fmt.Println(ui.FormatMuted("  2. Check your setup: nfts doctor"))
	fmt.Println(ui.FormatMuted("  3. Upload an image: nfts store letter_a.jpg \"Letter A\" \"letter A for dynamic nft\""))

	return nil
}
