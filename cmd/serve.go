package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/localstore"
	"github.com/kamal-hamza/nfts-cli/internal/server"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the nfts backend",
	Long: `Start the HTTP backend with CORS enabled and API docs at /docs.

The backend also serves a development storage service that speaks the
same /store wire format as nft.storage, so uploads can be tested
locally:

  nfts serve --port 3000
  NFT_STORAGE_ENDPOINT=http://localhost:3000 nfts store a.png "A" "letter a"

Port precedence: --port, $PORT, server.port in config, 3000.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (default $PORT or 3000)")
	serveCmd.Flags().String("host", "", "interface to bind (default all)")
	serveCmd.Flags().String("data-dir", "", "directory for stored content (default <data>/store)")
	serveCmd.Flags().Bool("no-cors", false, "disable CORS headers")

	_ = appViper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = appViper.BindEnv("port", "PORT")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := appViper.GetInt("port")
	if port <= 0 {
		port = appConfig.Server.Port
	}
	host, _ := cmd.Flags().GetString("host")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	noCORS, _ := cmd.Flags().GetBool("no-cors")

	if dataDir == "" {
		dataDir = appWorkspace.ResolveStorePath(appConfig.Server.DataDir)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := localstore.New(afero.NewBasePathFs(afero.NewOsFs(), dataDir), appConfig.Server.CacheSize)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Host:    host,
		Port:    port,
		CORS:    appConfig.Server.CORS && !noCORS,
		Debug:   appViper.GetBool("verbose"),
		Title:   appConfig.Server.Title,
		Version: Version,
		Token:   resolveToken(),
		Store:   store,
		Logger:  appLogger,
	})
	if err != nil {
		return err
	}

	if resolveToken() == "" {
		appLogger.Warn("no token configured, /store accepts any bearer token")
	}
	appLogger.Info("starting backend",
		zap.String("addr", srv.Addr()),
		zap.String("data_dir", dataDir),
	)
	fmt.Fprintln(os.Stderr, ui.FormatRocket(fmt.Sprintf("Listening on http://localhost:%d (docs at /docs)", port)))

	ctx, cancel := getContext()
	defer cancel()
	return srv.Run(ctx)
}
