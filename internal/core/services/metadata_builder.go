package services

import (
	"strings"

	"github.com/kamal-hamza/nfts-cli/internal/core/domain"
)

// MetadataDefaults are applied to every record the builder produces
type MetadataDefaults struct {
	PropertyType string
	Authors      []string
	GatewayHost  string
}

// DefaultMetadataDefaults returns the values used when nothing is configured
func DefaultMetadataDefaults() MetadataDefaults {
	return MetadataDefaults{
		PropertyType: "image",
		Authors:      []string{"Team G"},
		GatewayHost:  "nftstorage.link",
	}
}

// MetadataBuilder maps an image and its description onto a MetadataRecord.
// It performs no I/O and the same inputs always yield an equal record.
type MetadataBuilder struct {
	defaults MetadataDefaults
}

// NewMetadataBuilder creates a builder with the given defaults
func NewMetadataBuilder(defaults MetadataDefaults) *MetadataBuilder {
	if defaults.PropertyType == "" {
		defaults.PropertyType = "image"
	}
	return &MetadataBuilder{defaults: defaults}
}

// MetadataRequest carries the caller-supplied parts of a record
type MetadataRequest struct {
	Image       domain.ImageRef
	Name        string
	Description string
	Origins     map[string]string // protocol -> URI, merged over derived origins
	Authors     []string          // overrides the default authors when non-empty
}

// Build validates the request and assembles the record
func (b *MetadataBuilder) Build(req MetadataRequest) (*domain.MetadataRecord, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, &domain.ValidationError{Field: "description", Reason: "is required"}
	}
	if req.Image.IsZero() {
		return nil, &domain.ValidationError{Field: "image", Reason: "is required"}
	}
	if req.Image.IsEmbedded() {
		if !strings.HasPrefix(req.Image.Asset.MimeType, "image/") {
			return nil, &domain.ValidationError{
				Field:  "image",
				Reason: "must have an image/* content type, got " + req.Image.Asset.MimeType,
			}
		}
		if req.Image.Asset.Size() == 0 {
			return nil, &domain.ValidationError{Field: "image", Reason: "is empty"}
		}
	}

	return &domain.MetadataRecord{
		Image:       req.Image,
		Name:        name,
		Description: description,
		Properties: domain.Properties{
			Type:    b.defaults.PropertyType,
			Origins: b.origins(req),
			Authors: b.authors(req.Authors),
		},
	}, nil
}

func (b *MetadataBuilder) origins(req MetadataRequest) map[string]string {
	origins := make(map[string]string)

	// Static ipfs references carry their own origins
	if !req.Image.IsEmbedded() && domain.RootCID(req.Image.URI) != "" {
		origins["ipfs"] = req.Image.URI
		if b.defaults.GatewayHost != "" {
			origins["http"] = domain.GatewayURL(req.Image.URI, b.defaults.GatewayHost)
		}
	}

	for protocol, uri := range req.Origins {
		protocol = strings.TrimSpace(protocol)
		uri = strings.TrimSpace(uri)
		if protocol == "" || uri == "" {
			continue
		}
		origins[protocol] = uri
	}

	if len(origins) == 0 {
		return nil
	}
	return origins
}

func (b *MetadataBuilder) authors(override []string) []domain.Author {
	names := override
	if len(names) == 0 {
		names = b.defaults.Authors
	}

	authors := make([]domain.Author, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			authors = append(authors, domain.Author{Name: n})
		}
	}
	return authors
}
