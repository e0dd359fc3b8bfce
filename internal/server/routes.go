package server

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// route is one documented endpoint
type route struct {
	Method      string
	Path        string
	Handler     gin.HandlerFunc
	OperationID string
	Summary     string
	Tag         string
	Bearer      bool
	Params      []string
	Body        *openapi3.RequestBodyRef
	Responses   map[int]string
}

func (s *Server) apiRoutes() []route {
	metricsHandler := gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return []route{
		{
			Method:      http.MethodGet,
			Path:        "/health",
			Handler:     s.handleHealth,
			OperationID: "health",
			Summary:     "Liveness probe",
			Tag:         "system",
			Responses:   map[int]string{http.StatusOK: "Service is up"},
		},
		{
			Method:      http.MethodGet,
			Path:        "/metrics",
			Handler:     metricsHandler,
			OperationID: "metrics",
			Summary:     "Prometheus metrics",
			Tag:         "system",
			Responses:   map[int]string{http.StatusOK: "Metrics in text exposition format"},
		},
		{
			Method:      http.MethodPost,
			Path:        "/store",
			Handler:     s.handleStore,
			OperationID: "store",
			Summary:     "Store a token's metadata and its embedded files",
			Tag:         "storage",
			Bearer:      true,
			Body:        storeRequestBody(),
			Responses: map[int]string{
				http.StatusOK:                  "Stored; value.url is the metadata URI",
				http.StatusBadRequest:          "Malformed form or metadata",
				http.StatusUnauthorized:        "Missing or invalid API key",
				http.StatusInternalServerError: "Store failure",
			},
		},
		{
			Method:      http.MethodGet,
			Path:        "/ipfs/:cid",
			Handler:     s.handleIPFS,
			OperationID: "getContent",
			Summary:     "Fetch a blob or directory listing by CID",
			Tag:         "gateway",
			Params:      []string{"cid"},
			Responses: map[int]string{
				http.StatusOK:         "Content bytes",
				http.StatusBadRequest: "Invalid CID",
				http.StatusNotFound:   "Unknown CID",
			},
		},
		{
			Method:      http.MethodGet,
			Path:        "/ipfs/:cid/*path",
			Handler:     s.handleIPFS,
			OperationID: "getContentPath",
			Summary:     "Fetch content by CID and path",
			Tag:         "gateway",
			Params:      []string{"cid", "path"},
			Responses: map[int]string{
				http.StatusOK:         "Content bytes",
				http.StatusBadRequest: "Invalid CID",
				http.StatusNotFound:   "Unknown CID or path",
			},
		},
	}
}

func storeRequestBody() *openapi3.RequestBodyRef {
	schema := openapi3.NewObjectSchema().
		WithProperty("meta", openapi3.NewStringSchema()).
		WithProperty("image", openapi3.NewStringSchema().WithFormat("binary"))
	schema.Required = []string{"meta"}

	body := openapi3.NewRequestBody().
		WithDescription("meta holds the metadata JSON with embedded files set to null").
		WithRequired(true).
		WithContent(openapi3.NewContentWithFormDataSchema(schema))
	return &openapi3.RequestBodyRef{Value: body}
}
