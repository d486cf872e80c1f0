package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	contentTypeProtobuf = "application/x-protobuf"

	maxResponseBytes = 8 << 20 // 8 MiB
	maxErrorBody     = 512
)

type HTTPClientConfig struct {
	RelayURL     *url.URL
	KeyserverURL *url.URL

	// RequestsPerSecond bounds outgoing requests; <= 0 disables the limit.
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
}

// HTTPClient implements Relay and Keyserver over HTTP with protobuf bodies.
type HTTPClient struct {
	relayURL     *url.URL
	keyserverURL *url.URL
	client       *http.Client
	limiter      *rate.Limiter
}

var (
	_ Relay     = (*HTTPClient)(nil)
	_ Keyserver = (*HTTPClient)(nil)
)

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &HTTPClient{
		relayURL:     cfg.RelayURL,
		keyserverURL: cfg.KeyserverURL,
		client:       hc,
		limiter:      limiter,
	}
}

// Push stores set in destAddress's inbox: PUT /messages/{addr}.
func (c *HTTPClient) Push(ctx context.Context, destAddress string, set *MessageSet) error {
	u, err := c.endpoint(c.relayURL, "messages", destAddress)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, u, "", set.Marshal())
	return err
}

// Fetch reads messages received at or after since: GET /messages/{addr}.
func (c *HTTPClient) Fetch(ctx context.Context, myAddress, token string, since int64, filter *FetchFilter) (*MessagePage, error) {
	u, err := c.endpoint(c.relayURL, "messages", myAddress)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("start_time", strconv.FormatInt(since, 10))
	if filter != nil && filter.Until > 0 {
		q.Set("end_time", strconv.FormatInt(filter.Until, 10))
	}
	u.RawQuery = q.Encode()

	body, err := c.do(ctx, http.MethodGet, u, token, nil)
	if err != nil {
		return nil, err
	}
	return UnmarshalMessagePage(body)
}

// GetFilter reads the inbox acceptance filters: GET /filters/{addr}.
func (c *HTTPClient) GetFilter(ctx context.Context, address string) (*Filters, error) {
	u, err := c.endpoint(c.relayURL, "filters", address)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	return UnmarshalFilters(body)
}

// Sample reads address metadata from the keyserver: GET /keys/{addr}.
func (c *HTTPClient) Sample(ctx context.Context, address string) (*AddressMetadata, error) {
	u, err := c.endpoint(c.keyserverURL, "keys", address)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	return UnmarshalAddressMetadata(body)
}

func (c *HTTPClient) endpoint(base *url.URL, resource, address string) (*url.URL, error) {
	if base == nil {
		return nil, fmt.Errorf("no base URL configured for /%s", resource)
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("empty address")
	}
	ref := &url.URL{Path: strings.TrimSuffix(base.Path, "/") + "/" + resource + "/" + url.PathEscape(address)}
	return base.ResolveReference(ref), nil
}

func (c *HTTPClient) do(ctx context.Context, method string, u *url.URL, token string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeProtobuf)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeProtobuf)
	}
	if token != "" {
		req.Header.Set("Authorization", "POP "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u.Redacted(), err)
	}
	defer resp.Body.Close()

	respBody, err := readBodyLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{
			Method: method,
			URL:    u.Redacted(),
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	return respBody, nil
}

func readBodyLimited(r io.Reader, max int64) ([]byte, error) {
	lr := io.LimitReader(r, max+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("body too large (max %d bytes)", max)
	}
	return b, nil
}
