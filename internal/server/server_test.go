package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/localstore"
	"github.com/kamal-hamza/nfts-cli/internal/adapters/storage"
	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
	"github.com/kamal-hamza/nfts-cli/internal/core/services"
)

const testToken = "test-token"

func newTestServer(t *testing.T) (*Server, *localstore.Store) {
	t.Helper()

	store, err := localstore.New(afero.NewMemMapFs(), 16)
	require.NoError(t, err)

	srv, err := New(Options{
		Token:   testToken,
		CORS:    true,
		Store:   store,
		Title:   "Team G Final Project",
		Version: "test",
	})
	require.NoError(t, err)
	return srv, store
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestAddrDefaultsToPort3000(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, ":3000", srv.Addr())
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/store", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nfts_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestDocs(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swagger-ui")
	assert.Contains(t, rec.Body.String(), "/docs-json")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs-json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "Team G Final Project", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/store")
	assert.Contains(t, doc.Paths["/store"], "post")
	assert.Contains(t, doc.Paths, "/ipfs/{cid}/{path}")
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	srv, _ := newTestServer(t)
	doc := buildOpenAPI("nfts", "1.0.0", srv.routes)
	assert.NoError(t, doc.Validate(context.Background()))
}

func TestOpenAPIPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/health", "/health"},
		{"/ipfs/:cid", "/ipfs/{cid}"},
		{"/ipfs/:cid/*path", "/ipfs/{cid}/{path}"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, openAPIPath(tt.in))
		})
	}
}

func storeBody(t *testing.T, meta string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("meta", meta))
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestStoreRejectsBadToken(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong", "Bearer nope"},
		{"not bearer", "Basic " + testToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := storeBody(t, `{"name":"a","description":"b","image":null}`, "a.png", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/store", body)
			req.Header.Set("Content-Type", contentType)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"ok":false`)
		})
	}
}

func TestStoreValidatesMeta(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		meta string
		file string
	}{
		{"invalid json", `{`, "a.png"},
		{"missing name", `{"description":"b","image":null}`, "a.png"},
		{"missing image", `{"name":"a","description":"b","image":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := storeBody(t, tt.meta, tt.file, []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/store", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+testToken)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStoreAndFetch(t *testing.T) {
	srv, _ := newTestServer(t)
	image := []byte("\x89PNG\r\n\x1a\nfake image")

	body, contentType := storeBody(t, `{"name":"Letter A","description":"letter A for dynamic nft","image":null}`, "letter_a.png", image)
	req := httptest.NewRequest(http.MethodPost, "/store", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK    bool       `json:"ok"`
		Value storeValue `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	assert.Equal(t, "ipfs://"+resp.Value.IPNFT+"/metadata.json", resp.Value.URL)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Value.Data, &data))
	imageURI, _ := data["image"].(string)
	require.True(t, strings.HasPrefix(imageURI, "ipfs://"))
	assert.True(t, strings.HasSuffix(imageURI, "/letter_a.png"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ipfs/"+strings.TrimPrefix(imageURI, "ipfs://"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, image, rec.Body.Bytes())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ipfs/"+resp.Value.IPNFT+"/metadata.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(resp.Value.Data), rec.Body.String())
}

func TestFetchErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	other, err := localstore.New(afero.NewMemMapFs(), 1)
	require.NoError(t, err)
	unknown, err := other.Put([]byte("never stored"))
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"invalid cid", "/ipfs/not-a-cid", http.StatusBadRequest},
		{"unknown cid", "/ipfs/" + unknown.String(), http.StatusNotFound},
		{"path below a file", "/ipfs/" + unknown.String() + "/x", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSetPath(t *testing.T) {
	obj := map[string]any{"properties": map[string]any{"type": "image"}}
	require.NoError(t, setPath(obj, "properties.file", "ipfs://x/y"))
	require.NoError(t, setPath(obj, "image", "ipfs://a/b"))

	assert.Equal(t, "ipfs://a/b", obj["image"])
	props := obj["properties"].(map[string]any)
	assert.Equal(t, "image", props["type"])
	assert.Equal(t, "ipfs://x/y", props["file"])

	assert.Error(t, setPath(obj, "properties.", "v"))
}

// The client, builder and backend together: the URI handed back must resolve
// to the exact bytes that were uploaded.
func TestRoundTripThroughStorageClient(t *testing.T) {
	srv, store := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, err := storage.NewClient(storage.Options{
		Endpoint:   ts.URL,
		Token:      testToken,
		MaxRetries: 0,
	})
	require.NoError(t, err)

	content := []byte("\xff\xd8\xff\xe0 jpeg bytes for letter a")
	builder := services.NewMetadataBuilder(services.DefaultMetadataDefaults())
	record, err := builder.Build(services.MetadataRequest{
		Image:       domain.EmbeddedImage(&domain.AssetRecord{Content: content, Filename: "letter_a.jpg", MimeType: "image/jpeg"}),
		Name:        "Letter A",
		Description: "letter A for dynamic nft",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.Store(ctx, record)
	require.NoError(t, err)
	require.NotEmpty(t, result.IPNFT)
	assert.Equal(t, "ipfs://"+result.IPNFT+"/metadata.json", result.URI)

	root, err := cid.Decode(domain.RootCID(result.ImageURI()))
	require.NoError(t, err)
	imagePath := strings.TrimPrefix(result.ImageURI(), "ipfs://"+root.String()+"/")

	data, id, err := store.Resolve(root, imagePath)
	require.NoError(t, err)
	assert.True(t, localstore.Verify(id, data))
	assert.Equal(t, sha256.Sum256(content), sha256.Sum256(data))

	resp, err := http.Get(ts.URL + "/ipfs/" + result.IPNFT + "/metadata.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	echoed, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var meta struct {
		Name       string `json:"name"`
		Properties struct {
			Type    string `json:"type"`
			Authors []struct {
				Name string `json:"name"`
			} `json:"authors"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(echoed, &meta))
	assert.Equal(t, "Letter A", meta.Name)
	assert.Equal(t, "image", meta.Properties.Type)
	require.Len(t, meta.Properties.Authors, 1)
	assert.Equal(t, "Team G", meta.Properties.Authors[0].Name)
}

func TestRoundTripBadTokenIsAuthError(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, err := storage.NewClient(storage.Options{Endpoint: ts.URL, Token: "wrong"})
	require.NoError(t, err)

	_, err = client.Store(context.Background(), &domain.MetadataRecord{
		Image:       domain.StaticImage("ipfs://bafkreifrefmms2d74hjeuhqkzy65ejzp6ovp2jktep5zfbssnjtmdmgaxe"),
		Name:        "Letter C",
		Description: "letter c for dynamic nft",
		Properties:  domain.Properties{Type: "image", Authors: []domain.Author{{Name: "Team G"}}},
	})

	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	store, err := localstore.New(afero.NewMemMapFs(), 4)
	require.NoError(t, err)
	srv, err := New(Options{Host: "127.0.0.1", Port: 0, Store: store})
	require.NoError(t, err)
	srv.opts.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
