package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/nfts-cli/internal/adapters/storage"
	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
	"github.com/kamal-hamza/nfts-cli/internal/core/services"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

// resolveToken returns the API token from --token or $NFT_STORAGE_TOKEN
func resolveToken() string {
	return strings.TrimSpace(appViper.GetString("token"))
}

// resolveEndpoint returns the endpoint from --endpoint, $NFT_STORAGE_ENDPOINT or config
func resolveEndpoint() string {
	if endpoint := strings.TrimSpace(appViper.GetString("endpoint")); endpoint != "" {
		return endpoint
	}
	return appConfig.Endpoint
}

// newUploadService wires the uploader. It fails with a ConfigError before any
// I/O when no token is configured.
func newUploadService() (*services.UploadService, error) {
	client, err := storage.NewClient(storage.Options{
		Endpoint:   resolveEndpoint(),
		Token:      resolveToken(),
		Timeout:    appConfig.Timeout(),
		MaxRetries: appConfig.MaxRetries,
		Logger:     appLogger,
	})
	if err != nil {
		return nil, err
	}

	defaults := services.DefaultMetadataDefaults()
	if appConfig.PropertyType != "" {
		defaults.PropertyType = appConfig.PropertyType
	}
	if len(appConfig.Authors) > 0 {
		defaults.Authors = appConfig.Authors
	}
	if appConfig.GatewayHost != "" {
		defaults.GatewayHost = appConfig.GatewayHost
	}
	builder := services.NewMetadataBuilder(defaults)

	return services.NewUploadService(
		filesystem.NewFileLoader(nil, nil),
		builder,
		client,
		historyRepo,
		appLogger,
	), nil
}

// parseOrigins turns repeated key=url flags into a map
func parseOrigins(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	origins := make(map[string]string, len(values))
	for _, v := range values {
		key, uri, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		uri = strings.TrimSpace(uri)
		if !ok || key == "" || uri == "" {
			return nil, fmt.Errorf("invalid origin %q (expected key=url)", v)
		}
		origins[key] = uri
	}
	return origins, nil
}

// printUploadResponse prints the URI on stdout and a summary on stderr
func printUploadResponse(out io.Writer, resp *services.UploadResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			URI        string          `json:"url"`
			IPNFT      string          `json:"ipnft"`
			GatewayURL string          `json:"gateway_url"`
			Duplicate  bool            `json:"duplicate,omitempty"`
			Data       json.RawMessage `json:"data,omitempty"`
		}{resp.Result.URI, resp.Result.IPNFT, resp.GatewayURL, resp.Duplicate, resp.Result.Data})
	}

	if resp.Duplicate {
		fmt.Fprintln(os.Stderr, ui.FormatWarning("Already uploaded, reusing previous URI"))
	} else {
		fmt.Fprintln(os.Stderr, ui.FormatSuccess("Stored "+ui.StyleBold.Render(resp.Record.Name)))
	}
	if resp.GatewayURL != "" && resp.GatewayURL != resp.Result.URI {
		fmt.Fprintln(os.Stderr, ui.FormatLink(resp.GatewayURL))
	}
	fmt.Fprintln(out, resp.Result.URI)
	return nil
}

// copyToClipboard copies text and reports the outcome on stderr
func copyToClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatWarning("Could not copy to clipboard: "+err.Error()))
		return
	}
	fmt.Fprintln(os.Stderr, ui.FormatInfo("Copied to clipboard"))
}

// errorHint returns a follow-up line for errors the user can fix
func errorHint(err error) string {
	var (
		cfgErr  *domain.ConfigError
		authErr *domain.AuthError
		netErr  *domain.NetworkError
		valErr  *domain.ValidationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "Get a token at https://nft.storage and export NFT_STORAGE_TOKEN"
	case errors.As(err, &authErr):
		return "Check that NFT_STORAGE_TOKEN is valid and not revoked"
	case errors.As(err, &netErr):
		return "Check your connection or the endpoint (" + appEndpointOrDefault() + ")"
	case errors.As(err, &valErr):
		return "Run 'nfts store --help' for usage"
	}
	return ""
}

func appEndpointOrDefault() string {
	if appConfig == nil {
		return storage.DefaultEndpoint
	}
	return resolveEndpoint()
}

// GetPreferredEditor returns the editor from $EDITOR or a default
func GetPreferredEditor() string {
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

// openInEditor opens path in the user's editor, attached to the terminal
func openInEditor(path string) error {
	c := exec.Command(GetPreferredEditor(), path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
