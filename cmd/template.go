package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/nfts-cli/internal/core/services"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

// Fixed record stored by `nfts template`
const (
	templateImageURI    = "ipfs://bafkreifrefmms2d74hjeuhqkzy65ejzp6ovp2jktep5zfbssnjtmdmgaxe"
	templateName        = "Letter C"
	templateDescription = "letter c for dynamic nft"
)

var templateJSON bool

// templateCmd represents the template command
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Store the built-in Letter C metadata record",
	Long: `Store a fixed metadata record whose image is already on IPFS.

Useful to check that your token and endpoint work without uploading a file.`,
	Args: cobra.NoArgs,
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().BoolVar(&templateJSON, "json", false, "print the full result as JSON")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	svc, err := newUploadService()
	if err != nil {
		return err
	}

	ctx, cancel := getContext()
	defer cancel()

	var resp *services.UploadResponse
	err = ui.RunWithSpinner(cmd.ErrOrStderr(), ui.FormatUpload("Storing template record..."), func() error {
		var storeErr error
		resp, storeErr = svc.StoreStatic(ctx, services.StoreStaticRequest{
			ImageURI:    templateImageURI,
			Name:        templateName,
			Description: templateDescription,
		})
		return storeErr
	})
	if err != nil {
		return err
	}

	return printUploadResponse(cmd.OutOrStdout(), resp, templateJSON)
}
