package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/nfts-cli/internal/core/services"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

var (
	storeOrigins []string
	storeAuthors []string
	storeCopy    bool
	storeJSON    bool
	storeSkipDup bool
)

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store <imagePath> <name> <description>",
	Short: "Upload an image with its metadata",
	Long: `Upload an image file and an NFT metadata record built around it.

The image may be a local path or an http(s) URL. The metadata gets
properties.type and properties.authors from your configuration.

Examples:
  nfts store letter_a.jpg "Letter A" "letter A for dynamic nft"
  nfts store ./art.png "Art" "my art" --origin http=https://example.com/art.png`,
	Args: cobra.ExactArgs(3),
	RunE: runStore,
}

func init() {
	storeCmd.Flags().StringArrayVar(&storeOrigins, "origin", nil, "add properties.origins entry (key=url, repeatable)")
	storeCmd.Flags().StringArrayVar(&storeAuthors, "author", nil, "override properties.authors (repeatable)")
	storeCmd.Flags().BoolVarP(&storeCopy, "copy", "c", false, "copy the resulting URI to the clipboard")
	storeCmd.Flags().BoolVar(&storeJSON, "json", false, "print the full result as JSON")
	storeCmd.Flags().BoolVar(&storeSkipDup, "skip-duplicates", false, "reuse the previous URI if this image was uploaded before")
}

func runStore(cmd *cobra.Command, args []string) error {
	origins, err := parseOrigins(storeOrigins)
	if err != nil {
		return err
	}

	svc, err := newUploadService()
	if err != nil {
		return err
	}

	ctx, cancel := getContext()
	defer cancel()

	req := services.StoreFileRequest{
		Path:           args[0],
		Name:           args[1],
		Description:    args[2],
		Origins:        origins,
		Authors:        storeAuthors,
		SkipDuplicates: storeSkipDup,
	}

	var resp *services.UploadResponse
	err = ui.RunWithSpinner(cmd.ErrOrStderr(), ui.FormatUpload(fmt.Sprintf("Uploading %s...", args[0])), func() error {
		var storeErr error
		resp, storeErr = svc.StoreFile(ctx, req)
		return storeErr
	})
	if err != nil {
		return err
	}

	if err := printUploadResponse(cmd.OutOrStdout(), resp, storeJSON); err != nil {
		return err
	}
	if storeCopy {
		copyToClipboard(resp.Result.URI)
	}
	return nil
}
