package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/net/http/httpguts"
)

// DefaultHTTPTimeout applies when a request does not set timeoutMs.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPRequest is the JSON shape the script wrapper sends to the primitive.
type HTTPRequest struct {
	URL       string            `json:"url"`
	Method    string            `json:"method,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	BodyText  *string           `json:"bodyText,omitempty"`
	TimeoutMs *int64            `json:"timeoutMs,omitempty"`
}

// HTTPResponse is the JSON shape returned to the script wrapper.
type HTTPResponse struct {
	Status   int               `json:"status"`
	Headers  map[string]string `json:"headers"`
	BodyText string            `json:"bodyText"`
}

// NewHTTPClient returns a client that never follows redirects. Timeouts are
// applied per request.
func NewHTTPClient() *http.Client {
	client := cleanhttp.DefaultClient()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

func newHTTPAPI(ctx context.Context, client *http.Client) HTTPAPI {
	return HTTPAPI{
		RequestRaw: func(requestJSON string) (string, error) {
			var req HTTPRequest
			if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
				return "", fmt.Errorf("invalid request: %w", err)
			}
			resp, err := Do(ctx, client, req)
			if err != nil {
				return "", err
			}
			raw, err := json.Marshal(resp)
			if err != nil {
				return "", fmt.Errorf("encode response: %w", err)
			}
			return string(raw), nil
		},
	}
}

// Do performs one request. Redirect responses are returned unfollowed when
// the client is built by NewHTTPClient.
func Do(ctx context.Context, client *http.Client, in HTTPRequest) (HTTPResponse, error) {
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return HTTPResponse{}, fmt.Errorf("invalid http method: %q", in.Method)
	}

	target, err := url.Parse(in.URL)
	if err != nil {
		return HTTPResponse{}, fmt.Errorf("invalid url %q: %w", in.URL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return HTTPResponse{}, fmt.Errorf("invalid url %q: scheme must be http or https", in.URL)
	}
	if target.Host == "" {
		return HTTPResponse{}, fmt.Errorf("invalid url %q: missing host", in.URL)
	}

	timeout := DefaultHTTPTimeout
	if in.TimeoutMs != nil && *in.TimeoutMs > 0 {
		timeout = time.Duration(*in.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in.BodyText != nil {
		body = bytes.NewBufferString(*in.BodyText)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return HTTPResponse{}, fmt.Errorf("build request: %w", err)
	}

	names := make([]string, 0, len(in.Headers))
	for name := range in.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := in.Headers[name]
		if !httpguts.ValidHeaderFieldName(name) {
			return HTTPResponse{}, fmt.Errorf("invalid header name: %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return HTTPResponse{}, fmt.Errorf("invalid header value for %s", name)
		}
		if strings.EqualFold(name, "Host") {
			req.Host = value
			continue
		}
		req.Header.Set(name, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return HTTPResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return HTTPResponse{}, fmt.Errorf("read response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	return HTTPResponse{
		Status:   resp.StatusCode,
		Headers:  headers,
		BodyText: string(data),
	}, nil
}

func validMethod(method string) bool {
	if method == "" {
		return false
	}
	for _, r := range method {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}
	return true
}
