package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/nfts-cli/internal/adapters/localstore"
)

const metadataFilename = "metadata.json"

type storeValue struct {
	IPNFT string          `json:"ipnft"`
	URL   string          `json:"url"`
	Data  json.RawMessage `json:"data"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, name, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"ok":    false,
		"error": apiError{Name: name, Message: message},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.opts.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStore accepts the nft.storage /store wire format: a "meta" JSON part with
// embedded files nulled out, plus one file part per embedded file keyed by its
// JSON path.
func (s *Server) handleStore(c *gin.Context) {
	if !s.authorized(c.GetHeader("Authorization")) {
		respondError(c, http.StatusUnauthorized, "HTTPError", "invalid or missing API key")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "HTTPError", "expected multipart/form-data body")
		return
	}
	metaParts := form.Value["meta"]
	if len(metaParts) != 1 {
		respondError(c, http.StatusBadRequest, "HTTPError", "expected exactly one meta field")
		return
	}

	var meta map[string]any
	if err := json.Unmarshal([]byte(metaParts[0]), &meta); err != nil {
		respondError(c, http.StatusBadRequest, "SyntaxError", "meta is not valid JSON")
		return
	}

	for key, headers := range form.File {
		if len(headers) != 1 {
			respondError(c, http.StatusBadRequest, "HTTPError", fmt.Sprintf("expected one file for %q", key))
			return
		}
		uri, size, err := s.storeFile(headers[0])
		if err != nil {
			s.logger.Error("failed to store file", zap.String("key", key), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "HTTPError", "failed to store file")
			return
		}
		if err := setPath(meta, key, uri); err != nil {
			respondError(c, http.StatusBadRequest, "HTTPError", err.Error())
			return
		}
		s.metrics.storedBytes.Add(float64(size))
	}

	if err := validateMeta(meta); err != nil {
		respondError(c, http.StatusBadRequest, "TypeError", err.Error())
		return
	}

	encoded, err := json.Marshal(meta)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "HTTPError", "failed to encode metadata")
		return
	}
	root, _, err := s.opts.Store.PutDirectory(map[string][]byte{metadataFilename: encoded})
	if err != nil {
		s.logger.Error("failed to store metadata", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "HTTPError", "failed to store metadata")
		return
	}
	s.metrics.storedBytes.Add(float64(len(encoded)))

	s.logger.Info("stored token",
		zap.String("ipnft", root.String()),
		zap.String("request_id", c.GetString(requestIDHeader)),
	)

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"value": storeValue{
			IPNFT: root.String(),
			URL:   "ipfs://" + root.String() + "/" + metadataFilename,
			Data:  encoded,
		},
	})
}

func (s *Server) storeFile(header *multipart.FileHeader) (string, int, error) {
	f, err := header.Open()
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", 0, err
	}

	name := path.Base(header.Filename)
	if name == "." || name == "/" || name == "" {
		name = "blob"
	}
	dir, _, err := s.opts.Store.PutDirectory(map[string][]byte{name: data})
	if err != nil {
		return "", 0, err
	}
	return "ipfs://" + dir.String() + "/" + name, len(data), nil
}

func (s *Server) authorized(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return false
	}
	if s.opts.Token == "" {
		return true
	}
	return token == s.opts.Token
}

func (s *Server) handleIPFS(c *gin.Context) {
	root, err := cid.Decode(c.Param("cid"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "HTTPError", "invalid CID")
		return
	}
	p := strings.TrimPrefix(c.Param("path"), "/")

	data, id, err := s.opts.Store.Resolve(root, p)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			respondError(c, http.StatusNotFound, "HTTPError", "not found")
			return
		}
		s.logger.Error("failed to resolve", zap.String("cid", root.String()), zap.String("path", p), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "HTTPError", "failed to resolve content")
		return
	}

	if !localstore.Verify(id, data) {
		s.logger.Error("content does not match its CID", zap.String("cid", id.String()))
		respondError(c, http.StatusInternalServerError, "HTTPError", "stored content is corrupt")
		return
	}

	c.Header("Etag", `"`+id.String()+`"`)
	c.Header("X-Ipfs-Path", "/ipfs/"+path.Join(root.String(), p))
	c.Header("Cache-Control", "public, max-age=29030400, immutable")

	if localstore.IsDirectory(id) {
		c.Data(http.StatusOK, "application/json", data)
		return
	}
	c.Data(http.StatusOK, filesystem.DetectMimeType(path.Base(p), data), data)
}

// setPath assigns value at a dotted key path such as "properties.file"
func setPath(obj map[string]any, key, value string) error {
	parts := strings.Split(key, ".")
	current := obj
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	last := parts[len(parts)-1]
	if last == "" {
		return fmt.Errorf("invalid file key %q", key)
	}
	current[last] = value
	return nil
}

func validateMeta(meta map[string]any) error {
	for _, field := range []string{"name", "description"} {
		if v, ok := meta[field].(string); !ok || v == "" {
			return fmt.Errorf("property `%s` must be a non-empty string", field)
		}
	}
	image, ok := meta["image"].(string)
	if !ok || image == "" {
		return errors.New("property `image` must be a file or a URL")
	}
	return nil
}
