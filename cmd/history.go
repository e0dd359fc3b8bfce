package cmd

import (
	"errors"
	"fmt"
	"os"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

var (
	historyList  bool
	historyLimit int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:     "history [query]",
	Aliases: []string{"ls"},
	Short:   "List or search past uploads",
	Long: `Show uploads recorded on this machine, newest first.

With no query in a terminal, opens a fuzzy finder and copies the chosen
URI to the clipboard. With a query, prints the matching uploads.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&historyList, "list", "l", false, "print a table instead of opening the finder")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	var (
		entries []domain.UploadEntry
		err     error
	)
	if len(args) == 1 {
		entries, err = historyRepo.Search(ctx, args[0])
	} else {
		entries, err = historyRepo.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		if len(args) == 1 {
			fmt.Println(ui.FormatWarning("No uploads found matching: " + args[0]))
		} else {
			fmt.Println(ui.FormatWarning("No uploads yet"))
			fmt.Println(ui.FormatInfo("Upload your first image with: nfts store <image> <name> <description>"))
		}
		return nil
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}

	if len(args) == 0 && !historyList && isatty.IsTerminal(os.Stdout.Fd()) {
		return pickHistoryEntry(entries)
	}

	printHistoryTable(entries)
	return nil
}

func pickHistoryEntry(entries []domain.UploadEntry) error {
	idx, err := fuzzyfinder.Find(
		entries,
		func(i int) string { return entries[i].Name },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			e := entries[i]
			return fmt.Sprintf("Name: %s\nDescription: %s\nFile: %s\nUploaded: %s\n\nURI: %s\nGateway: %s",
				e.Name, e.Description, e.Filename,
				e.UploadedAt.Format("2006-01-02 15:04"),
				e.URI, domain.GatewayURL(e.URI, appConfig.GatewayHost))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return err
	}

	fmt.Println(entries[idx].URI)
	copyToClipboard(entries[idx].URI)
	return nil
}

func printHistoryTable(entries []domain.UploadEntry) {
	fmt.Println(ui.FormatTitle("Uploads"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Name", Width: 12, MaxWidth: 24},
		{Header: "Date", Width: 16},
		{Header: "File", Width: 12, MaxWidth: 20},
		{Header: "URI", MaxWidth: 80},
	})
	for _, e := range entries {
		table.AddRow([]string{
			e.Name,
			e.UploadedAt.Format("2006-01-02 15:04"),
			e.Filename,
			e.URI,
		})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d uploads", len(entries))))
}
