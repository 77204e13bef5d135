// Package ns1 implements the api.Client contract over the NS1 REST API.
// Retries and backoff for transient failures live here, in the transport,
// not in the reconcile engine.
package ns1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/ns1-tools/ns1-sync/api"
	"github.com/ns1-tools/ns1-sync/config"
	"github.com/ns1-tools/ns1-sync/metrics"
	"github.com/ns1-tools/ns1-sync/resource"
)

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	endpoint string
	apiKey   string
	http     Httper
	metrics  *metrics.Metrics
}

var _ api.Client = (*Client)(nil)

func New(cfg config.NS1, m *metrics.Metrics) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ns1 api key empty")
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = cfg.RetryMax
	rc.Logger = nil

	c := &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     rc.StandardClient(),
		metrics:  m,
	}
	return c, nil
}

func (c *Client) GetZone(ctx context.Context, zone string) (resource.Doc, error) {
	doc, err := c.do(ctx, http.MethodGet, zonePath(zone), nil)
	c.metrics.IncAPIRequest("zone", "get", err == nil)
	return doc, err
}

func (c *Client) CreateZone(ctx context.Context, zone string, doc resource.Doc) (resource.Doc, error) {
	slog.Info("Creating zone", "zone", zone)
	body := doc.Copy()
	body["zone"] = zone
	out, err := c.do(ctx, http.MethodPut, zonePath(zone), body)
	c.metrics.IncAPIRequest("zone", "create", err == nil)
	return out, err
}

func (c *Client) UpdateZone(ctx context.Context, zone string, doc resource.Doc) (resource.Doc, error) {
	slog.Info("Updating zone", "zone", zone)
	out, err := c.do(ctx, http.MethodPost, zonePath(zone), doc)
	c.metrics.IncAPIRequest("zone", "update", err == nil)
	return out, err
}

func (c *Client) DeleteZone(ctx context.Context, zone string) error {
	slog.Info("Deleting zone", "zone", zone)
	_, err := c.do(ctx, http.MethodDelete, zonePath(zone), nil)
	c.metrics.IncAPIRequest("zone", "delete", err == nil)
	return err
}

func (c *Client) GetRecord(ctx context.Context, zone, domain, rtype string) (resource.Doc, error) {
	doc, err := c.do(ctx, http.MethodGet, recordPath(zone, domain, rtype), nil)
	c.metrics.IncAPIRequest("record", "get", err == nil)
	return doc, err
}

func (c *Client) CreateRecord(ctx context.Context, zone, domain, rtype string, doc resource.Doc) (resource.Doc, error) {
	slog.Info("Creating record", "zone", zone, "domain", domain, "type", rtype)
	body := doc.Copy()
	body["zone"] = zone
	body["domain"] = domain
	body["type"] = rtype
	out, err := c.do(ctx, http.MethodPut, recordPath(zone, domain, rtype), body)
	c.metrics.IncAPIRequest("record", "create", err == nil)
	return out, err
}

func (c *Client) UpdateRecord(ctx context.Context, zone, domain, rtype string, doc resource.Doc) (resource.Doc, error) {
	slog.Info("Updating record", "zone", zone, "domain", domain, "type", rtype)
	out, err := c.do(ctx, http.MethodPost, recordPath(zone, domain, rtype), doc)
	c.metrics.IncAPIRequest("record", "update", err == nil)
	return out, err
}

func (c *Client) DeleteRecord(ctx context.Context, zone, domain, rtype string) error {
	slog.Info("Deleting record", "zone", zone, "domain", domain, "type", rtype)
	_, err := c.do(ctx, http.MethodDelete, recordPath(zone, domain, rtype), nil)
	c.metrics.IncAPIRequest("record", "delete", err == nil)
	return err
}

func (c *Client) GetKey(ctx context.Context, name string) (resource.Doc, error) {
	doc, err := c.do(ctx, http.MethodGet, keyPath(name), nil)
	c.metrics.IncAPIRequest("tsigkey", "get", err == nil)
	return doc, err
}

func (c *Client) CreateKey(ctx context.Context, name string, doc resource.Doc) (resource.Doc, error) {
	slog.Info("Creating tsig key", "name", name)
	body := doc.Copy()
	body["name"] = name
	out, err := c.do(ctx, http.MethodPut, keyPath(name), body)
	c.metrics.IncAPIRequest("tsigkey", "create", err == nil)
	return out, err
}

func (c *Client) UpdateKey(ctx context.Context, name string, doc resource.Doc) (resource.Doc, error) {
	slog.Info("Updating tsig key", "name", name)
	out, err := c.do(ctx, http.MethodPost, keyPath(name), doc)
	c.metrics.IncAPIRequest("tsigkey", "update", err == nil)
	return out, err
}

func (c *Client) DeleteKey(ctx context.Context, name string) error {
	slog.Info("Deleting tsig key", "name", name)
	_, err := c.do(ctx, http.MethodDelete, keyPath(name), nil)
	c.metrics.IncAPIRequest("tsigkey", "delete", err == nil)
	return err
}

func zonePath(zone string) string {
	return "/zones/" + url.PathEscape(zone)
}

func recordPath(zone, domain, rtype string) string {
	return fmt.Sprintf("/zones/%s/%s/%s",
		url.PathEscape(zone), url.PathEscape(domain), url.PathEscape(strings.ToUpper(rtype)))
}

func keyPath(name string) string {
	return "/tsig/" + url.PathEscape(name)
}

func (c *Client) do(ctx context.Context, method, path string, body resource.Doc) (resource.Doc, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-NSONE-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("NS1 API request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &api.Error{Kind: api.KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.Error{Kind: api.KindTransport, StatusCode: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode >= 400 {
		return nil, classify(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc resource.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &api.Error{
			Kind:       api.KindTransport,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response: %v", err),
		}
	}
	return doc, nil
}

func classify(status int, body []byte) *api.Error {
	message := strings.TrimSpace(string(body))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}

	kind := api.KindConflict // remote-side validation rejection
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = api.KindAuth
	case status == http.StatusNotFound:
		kind = api.KindNotFound
	case status >= 500:
		kind = api.KindTransport
	}
	return &api.Error{Kind: kind, StatusCode: status, Message: message}
}
