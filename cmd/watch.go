package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
	"github.com/kamal-hamza/nfts-cli/internal/core/services"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
)

var (
	watchDescription string
	watchQuiet       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload images as they are dropped into a directory",
	Long: `Watch a directory and upload every new or changed image in it.

The token name is derived from the filename (letter_a.jpg becomes
"Letter A"). Images already in your upload history are skipped unless
watch_skip_duplicates is false in the config.

Use --quiet to only print URIs.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDescription, "description", "d", "", "description for every upload (default: the name)")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "only print URIs")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return &domain.NotFoundError{Path: dir, Err: err}
	}

	svc, err := newUploadService()
	if err != nil {
		return err
	}

	ctx, cancel := getContext()
	defer cancel()

	if !watchQuiet {
		fmt.Fprintln(os.Stderr, ui.FormatRocket("Watching for images..."))
		fmt.Fprintln(os.Stderr, ui.FormatMuted("Directory: "+dir))
		fmt.Fprintln(os.Stderr, ui.FormatMuted("Press Ctrl+C to stop"))
	}

	err = watchImages(ctx, dir, appConfig.WatchDebounce(), func(path string) {
		uploadDropped(ctx, cmd, svc, path)
	})
	if err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, ui.FormatMuted("Watcher stopped"))
	}
	return nil
}

// watchImages calls upload for every image created or written in dir until
// ctx is done. Uploads run one at a time; the debouncer only decides when.
func watchImages(ctx context.Context, dir string, delay time.Duration, upload func(path string)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	queue := make(chan string, 16)
	debounce := newDebouncer(delay, func(path string) {
		select {
		case queue <- path:
		case <-ctx.Done():
		}
	})
	defer debounce.stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case path := <-queue:
				upload(path)
			case <-ctx.Done():
				return
			}
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWatchableImage(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				debounce.trigger(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

func uploadDropped(ctx context.Context, cmd *cobra.Command, svc *services.UploadService, path string) {
	name := domain.DisplayName(filepath.Base(path))
	description := watchDescription
	if description == "" {
		description = name
	}

	resp, err := svc.StoreFile(ctx, services.StoreFileRequest{
		Path:           path,
		Name:           name,
		Description:    description,
		SkipDuplicates: appConfig.WatchSkipDupes,
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(os.Stderr, ui.FormatError(filepath.Base(path)+": "+err.Error()))
		return
	}

	if watchQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), resp.Result.URI)
		return
	}
	if err := printUploadResponse(cmd.OutOrStdout(), resp, false); err != nil {
		appLogger.Warn("failed to print result", zap.Error(err))
	}
}

// isWatchableImage reports whether a dropped file should be uploaded
func isWatchableImage(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") ||
		strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, ".part") {
		return false
	}
	return strings.HasPrefix(filesystem.DetectMimeType(base, nil), "image/")
}

// debouncer fires fn once per key after the key has been quiet for delay
type debouncer struct {
	delay  time.Duration
	fn     func(key string)
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration, fn func(key string)) *debouncer {
	return &debouncer{delay: delay, fn: fn, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		d.fn(key)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
