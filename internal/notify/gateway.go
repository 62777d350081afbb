package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GatewayClient issues a single authenticated GET per message to the SMS
// gateway. The gateway answers with plain text "STATUS:DETAIL"; a
// case-sensitive "OK" status means accepted. No retry is performed.
type GatewayClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewGatewayClient builds a client for the gateway endpoint.
func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send submits one message and returns the gateway's detail token on success.
func (c *GatewayClient) Send(ctx context.Context, username, password, to, text string) (string, error) {
	params := url.Values{}
	params.Set("id", username)
	params.Set("pw", password)
	params.Set("to", to)
	params.Set("text", text)

	reqURL := c.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build gateway request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("call sms gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read gateway response: %w", err)
	}

	status, detail := parseGatewayResponse(string(body))
	if status != "OK" {
		return "", &GatewayError{Status: status, Detail: detail}
	}
	return detail, nil
}

// parseGatewayResponse splits a "STATUS:DETAIL" body. A body without a colon
// is all status, empty detail.
func parseGatewayResponse(body string) (status, detail string) {
	trimmed := strings.TrimSpace(body)
	parts := strings.SplitN(trimmed, ":", 2)
	status = parts[0]
	if len(parts) == 2 {
		detail = parts[1]
	}
	return status, detail
}

func (c *GatewayClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
