package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Author credits a creator of the asset
type Author struct {
	Name string `json:"name"`
}

// Properties holds the free-form attributes of a metadata record
type Properties struct {
	Type    string            `json:"type"`
	Origins map[string]string `json:"origins,omitempty"` // protocol -> URI
	Authors []Author          `json:"authors"`
}

// ImageRef is either embedded file content or a reference to content that is
// already stored somewhere. Exactly one of the two is set.
type ImageRef struct {
	Asset *AssetRecord
	URI   string
}

// EmbeddedImage wraps a loaded file as an image reference
func EmbeddedImage(asset *AssetRecord) ImageRef {
	return ImageRef{Asset: asset}
}

// StaticImage wraps an existing URI (ipfs://, https://) as an image reference
func StaticImage(uri string) ImageRef {
	return ImageRef{URI: uri}
}

// IsEmbedded reports whether the image carries its own bytes
func (r ImageRef) IsEmbedded() bool {
	return r.Asset != nil
}

// IsZero reports whether no image was provided
func (r ImageRef) IsZero() bool {
	return r.Asset == nil && strings.TrimSpace(r.URI) == ""
}

// MarshalJSON encodes embedded content as null; the bytes travel as a separate
// file part keyed by the field path.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	if r.Asset != nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.URI)
}

// UnmarshalJSON accepts a URI string or null
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ImageRef{}
		return nil
	}
	var uri string
	if err := json.Unmarshal(data, &uri); err != nil {
		return fmt.Errorf("image must be a string URI: %w", err)
	}
	*r = ImageRef{URI: uri}
	return nil
}

// MetadataRecord describes an asset for submission to the storage service
type MetadataRecord struct {
	Image       ImageRef   `json:"image"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Properties  Properties `json:"properties"`
}

// EmbeddedFiles returns the files that must be sent alongside the JSON body,
// keyed by their JSON field path.
func (m *MetadataRecord) EmbeddedFiles() map[string]*AssetRecord {
	files := make(map[string]*AssetRecord)
	if m.Image.IsEmbedded() {
		files["image"] = m.Image.Asset
	}
	return files
}
