// Package aircall sends SMS through the Aircall public API.
package aircall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.aircall.io/v1"

// Client sends native SMS from an Aircall number.
type Client interface {
	SendSMS(ctx context.Context, numberID, to, body string) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	id      string
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates an Aircall API client using basic auth credentials.
func NewClient(id, token string, opts ...Option) Client {
	c := &httpClient{
		id:      id,
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (c *httpClient) SendSMS(ctx context.Context, numberID, to, body string) error {
	raw, err := json.Marshal(sendRequest{To: to, Body: body})
	if err != nil {
		return eris.Wrap(err, "aircall: marshal request")
	}

	url := fmt.Sprintf("%s/numbers/%s/messages/native/send", c.baseURL, numberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return eris.Wrap(err, "aircall: create request")
	}
	req.SetBasicAuth(c.id, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "aircall: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return eris.Errorf("aircall: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
