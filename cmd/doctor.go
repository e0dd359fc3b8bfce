package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your nfts setup",
	Long: `Diagnose issues with your nfts setup.

Checks for:
  - Workspace and config file
  - API token
  - Reachability of the storage endpoint
  - Readable upload history`,
	Run: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("🏥 NFTS Doctor"))
	fmt.Println()

	checkStep("Workspace Directory", func() error {
		if !appWorkspace.Exists() {
			return fmt.Errorf("not found at %s (run 'nfts init')", appWorkspace.RootPath)
		}
		return nil
	})

	checkStep("Configuration File", func() error {
		if _, err := os.Stat(configFilePath()); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults apply)", configFilePath())
		}
		return nil
	})

	checkStep("API Token", func() error {
		if resolveToken() == "" {
			return fmt.Errorf("NFT_STORAGE_TOKEN is not set")
		}
		return nil
	})

	checkStep("Endpoint "+resolveEndpoint(), func() error {
		return checkEndpoint(resolveEndpoint())
	})

	ctx, cancel := getContext()
	defer cancel()
	entries, historyErr := historyRepo.List(ctx)
	checkStep(fmt.Sprintf("Upload History (%d uploads)", len(entries)), func() error {
		return historyErr
	})
}

// checkEndpoint verifies the endpoint answers HTTP requests
func checkEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid endpoint URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("timed out")
		}
		return fmt.Errorf("unreachable: %v", err)
	}
	resp.Body.Close()
	return nil
}

func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.FormatSuccess("✔"), name)
	} else {
		fmt.Printf("%s %s\n", ui.FormatError("✘"), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
