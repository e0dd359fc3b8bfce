package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>%s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => { window.ui = SwaggerUIBundle({ url: "/docs-json", dom_id: "#swagger-ui" }); };
  </script>
</body>
</html>
`

func (s *Server) registerDocs() {
	doc := buildOpenAPI(s.opts.Title, s.opts.Version, s.routes)
	page := fmt.Sprintf(swaggerPage, s.opts.Title)

	s.engine.GET("/docs-json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})
	s.engine.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})
}

// buildOpenAPI renders the route table as an OpenAPI 3 document
func buildOpenAPI(title, version string, routes []route) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       title,
			Description: "Asset uploader backend. /store accepts the nft.storage wire format.",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, r := range routes {
		op := &openapi3.Operation{
			OperationID: r.OperationID,
			Summary:     r.Summary,
			Tags:        []string{r.Tag},
			RequestBody: r.Body,
			Responses:   buildResponses(r.Responses),
		}
		for _, name := range r.Params {
			param := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
			op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
		}
		if r.Bearer {
			op.Description = "Requires an `Authorization: Bearer <token>` header."
		}
		doc.AddOperation(openAPIPath(r.Path), r.Method, op)
	}
	return doc
}

func buildResponses(descriptions map[int]string) *openapi3.Responses {
	codes := make([]int, 0, len(descriptions))
	for code := range descriptions {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	opts := make([]openapi3.NewResponsesOption, 0, len(codes))
	for _, code := range codes {
		resp := openapi3.NewResponse().WithDescription(descriptions[code])
		opts = append(opts, openapi3.WithStatus(code, &openapi3.ResponseRef{Value: resp}))
	}
	return openapi3.NewResponses(opts...)
}

// openAPIPath converts gin's ":param" and "*param" segments to "{param}"
func openAPIPath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}
