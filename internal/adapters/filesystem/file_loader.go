package filesystem

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

// DefaultMimeType is used when neither the extension nor the content identify the file
const DefaultMimeType = "application/octet-stream"

// FileLoader reads assets from a filesystem, or over HTTP when given a URL
type FileLoader struct {
	fs     afero.Fs
	client *http.Client
}

// NewFileLoader creates a loader. A nil fs uses the OS filesystem and a nil
// client uses http.DefaultClient.
func NewFileLoader(fs afero.Fs, client *http.Client) *FileLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &FileLoader{fs: fs, client: client}
}

// Load reads the whole file into memory
func (l *FileLoader) Load(ctx context.Context, source string) (*domain.AssetRecord, error) {
	if isRemote(source) {
		return l.fetch(ctx, source)
	}

	info, err := l.fs.Stat(source)
	if err != nil {
		return nil, &domain.NotFoundError{Path: source, Err: err}
	}
	if info.IsDir() {
		return nil, &domain.NotFoundError{Path: source, Err: fmt.Errorf("is a directory")}
	}

	content, err := afero.ReadFile(l.fs, source)
	if err != nil {
		return nil, &domain.NotFoundError{Path: source, Err: err}
	}

	return &domain.AssetRecord{
		Content:  content,
		Filename: filepath.Base(source),
		MimeType: DetectMimeType(source, content),
	}, nil
}

// fetch downloads an image from an http(s) origin
func (l *FileLoader) fetch(ctx context.Context, rawURL string) (*domain.AssetRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.NotFoundError{Path: rawURL, Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "GET " + rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.NotFoundError{Path: rawURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.ServiceError{StatusCode: resp.StatusCode, Message: "error fetching image: " + resp.Status}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "GET " + rawURL, Err: err}
	}

	filename := remoteFilename(rawURL)
	mimeType := ""
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil && mediaType != DefaultMimeType {
			mimeType = mediaType
		}
	}
	if mimeType == "" {
		mimeType = DetectMimeType(filename, content)
	}

	return &domain.AssetRecord{
		Content:  content,
		Filename: filename,
		MimeType: mimeType,
	}, nil
}

// DetectMimeType guesses a MIME type from the file extension, falling back to
// content sniffing and then to DefaultMimeType.
func DetectMimeType(name string, content []byte) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			if mediaType, _, err := mime.ParseMediaType(t); err == nil {
				return mediaType
			}
			return t
		}
	}

	if len(content) > 0 {
		detected := mimetype.Detect(content)
		if mediaType, _, err := mime.ParseMediaType(detected.String()); err == nil {
			return mediaType
		}
	}

	return DefaultMimeType
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func remoteFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "image"
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." || base == "" {
		return "image"
	}
	return base
}
