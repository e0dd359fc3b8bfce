package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

const (
	// DefaultEndpoint is the hosted nft.storage API
	DefaultEndpoint = "https://api.nft.storage"

	storePath        = "/store"
	maxResponseBytes = 4 << 20
)

// Options configures a Client
type Options struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	// BaseDelay is the first backoff interval; later intervals grow exponentially
	BaseDelay  time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client submits metadata records to an nft.storage compatible /store endpoint
type Client struct {
	endpoint   string
	token      string
	maxRetries int
	baseDelay  time.Duration
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates a storage client. The token is required.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, &domain.ConfigError{Key: "token", Hint: "set NFT_STORAGE_TOKEN or pass --token"}
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		token:      strings.TrimSpace(opts.Token),
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		http:       httpClient,
		logger:     logger,
	}, nil
}

// storeResponse is the envelope returned by the service
type storeResponse struct {
	OK    bool                `json:"ok"`
	Value *domain.UploadResult `json:"value,omitempty"`
	Error *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Store submits the record. Network failures are retried with exponential
// backoff; authentication and service errors are returned immediately.
func (c *Client) Store(ctx context.Context, record *domain.MetadataRecord) (*domain.UploadResult, error) {
	body, contentType, err := EncodeStoreRequest(record)
	if err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.baseDelay
	policy.MaxInterval = 30 * c.baseDelay

	attempt := 0
	operation := func() (*domain.UploadResult, error) {
		attempt++
		result, err := c.post(ctx, body, contentType)
		if err == nil {
			return result, nil
		}
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) && ctx.Err() == nil {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("store attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
}

func (c *Client) post(ctx context.Context, body []byte, contentType string) (*domain.UploadResult, error) {
	op := "POST " + c.endpoint + storePath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+storePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}

	var envelope storeResponse
	decodeErr := json.Unmarshal(raw, &envelope)

	message := strings.TrimSpace(string(raw))
	errName := ""
	if decodeErr == nil && envelope.Error != nil {
		message = envelope.Error.Message
		errName = envelope.Error.Name
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &domain.AuthError{StatusCode: resp.StatusCode, Message: message}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.ServiceError{StatusCode: resp.StatusCode, Name: errName, Message: message}
	case decodeErr != nil:
		return nil, &domain.ServiceError{StatusCode: resp.StatusCode, Message: "malformed response: " + decodeErr.Error()}
	case !envelope.OK || envelope.Value == nil:
		return nil, &domain.ServiceError{StatusCode: resp.StatusCode, Name: errName, Message: message}
	}

	if envelope.Value.URI == "" {
		return nil, &domain.ServiceError{StatusCode: resp.StatusCode, Message: "response is missing url"}
	}
	return envelope.Value, nil
}

// quoteEscaper escapes a Content-Disposition quoted-string the way mime/multipart does
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeStoreRequest builds the multipart body for /store: a "meta" part with
// the JSON record (embedded files as null) and one part per embedded file,
// named by its JSON field path.
func EncodeStoreRequest(record *domain.MetadataRecord) ([]byte, string, error) {
	meta, err := json.Marshal(record)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("meta", string(meta)); err != nil {
		return nil, "", fmt.Errorf("failed to write meta part: %w", err)
	}

	files := record.EmbeddedFiles()
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		asset := files[key]
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(key), quoteEscaper.Replace(asset.Filename)))
		h.Set("Content-Type", asset.MimeType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s part: %w", key, err)
		}
		if _, err := part.Write(asset.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write %s part: %w", key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize request: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
