package geodata

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// buildURL safely combines a base URL with a path
func buildURL(baseURL, path string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	trimmedPath := strings.TrimLeft(path, "/")

	if trimmedPath == "" {
		return baseURL
	}
	return baseURL + "/" + trimmedPath
}

// GeoRequestBuilder implements the Builder pattern for OGC API Features requests
type GeoRequestBuilder struct {
	baseURL    string
	httpMethod string
	apiPath    string
	params     map[string]string
	userAgent  string
	headers    map[string]string
}

// NewGeoRequestBuilder creates a new base request builder for feature endpoints
func NewGeoRequestBuilder(baseURL, apiPath string) *GeoRequestBuilder {
	rb := &GeoRequestBuilder{
		baseURL:    baseURL,
		apiPath:    apiPath,
		httpMethod: "GET",
		params:     make(map[string]string),
		headers:    make(map[string]string),
		userAgent:  "Mozilla/5.0 Geo-Proxy",
	}

	rb.headers["Accept"] = "application/geo+json, application/json"

	return rb
}

// With adds a custom parameter to the URL query
func (rb *GeoRequestBuilder) With(key, value string) *GeoRequestBuilder {
	rb.params[key] = value
	return rb
}

// WithParams adds a set of custom parameters to the URL query
func (rb *GeoRequestBuilder) WithParams(params map[string]string) *GeoRequestBuilder {
	for key, value := range params {
		rb.params[key] = value
	}
	return rb
}

// WithBBox adds a bbox parameter in west,south,east,north order
func (rb *GeoRequestBuilder) WithBBox(west, south, east, north float64) *GeoRequestBuilder {
	rb.params["bbox"] = fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(west), formatCoord(south), formatCoord(east), formatCoord(north))
	return rb
}

// WithLimit adds a limit parameter
func (rb *GeoRequestBuilder) WithLimit(limit int) *GeoRequestBuilder {
	if limit > 0 {
		rb.params["limit"] = strconv.Itoa(limit)
	}
	return rb
}

// WithOffset adds an offset parameter. Zero offsets are included explicitly
// so paged requests stay uniform.
func (rb *GeoRequestBuilder) WithOffset(offset int) *GeoRequestBuilder {
	if offset >= 0 {
		rb.params["offset"] = strconv.Itoa(offset)
	}
	return rb
}

// WithResultTypeHits requests a count-only response from the server
func (rb *GeoRequestBuilder) WithResultTypeHits() *GeoRequestBuilder {
	rb.params["resulttype"] = "hits"
	return rb
}

// WithFormat adds the output format parameter
func (rb *GeoRequestBuilder) WithFormat(format string) *GeoRequestBuilder {
	if format != "" {
		rb.params["f"] = format
	}
	return rb
}

// WithHeader adds a custom HTTP header
func (rb *GeoRequestBuilder) WithHeader(name, value string) *GeoRequestBuilder {
	rb.headers[name] = value
	return rb
}

// WithUserAgent sets the User-Agent header
func (rb *GeoRequestBuilder) WithUserAgent(userAgent string) *GeoRequestBuilder {
	rb.userAgent = userAgent
	return rb
}

// BuildURL builds the complete URL for the request
func (rb *GeoRequestBuilder) BuildURL() string {
	fullPath := buildURL(rb.baseURL, rb.apiPath)

	query := url.Values{}

	for key, value := range rb.params {
		query.Add(key, value)
	}

	finalURL := fullPath
	queryString := query.Encode()
	if queryString != "" {
		finalURL = fmt.Sprintf("%s?%s", finalURL, queryString)
	}

	return finalURL
}

// Build creates an http.Request object
func (rb *GeoRequestBuilder) Build() (*http.Request, error) {
	return rb.BuildWithURL(rb.BuildURL())
}

func (rb *GeoRequestBuilder) BuildWithURL(finalURL string) (*http.Request, error) {
	req, err := http.NewRequest(rb.httpMethod, finalURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", rb.userAgent)

	for key, value := range rb.headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// formatCoord renders a coordinate without trailing zeros
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
