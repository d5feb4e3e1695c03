package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// Endpoint is a base URL plus the HTTP client and user agent used to reach
// it. Service clients embed one.
type Endpoint struct {
	BaseURL   string
	Client    Doer
	UserAgent string
}

// NewEndpoint validates baseURL and returns an Endpoint for it.
func NewEndpoint(component, baseURL string, client Doer, userAgent string) (Endpoint, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return Endpoint{}, Wrap(ErrConfiguration, component, "init", "base url required", nil)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return Endpoint{}, Wrap(ErrConfiguration, component, "init", fmt.Sprintf("invalid base url %q", baseURL), err)
	}
	if client == nil {
		return Endpoint{}, Wrap(ErrConfiguration, component, "init", "http client required", nil)
	}
	return Endpoint{BaseURL: baseURL, Client: client, UserAgent: strings.TrimSpace(userAgent)}, nil
}

// URL joins path (which must start with '/') onto the base URL.
func (e Endpoint) URL(path string) string {
	return e.BaseURL + path
}

// Get fetches path relative to the base URL.
func (e Endpoint) Get(ctx context.Context, op, path string) ([]byte, error) {
	return GetBody(ctx, e.Client, Request{
		Op:        op,
		URL:       e.URL(path),
		UserAgent: e.UserAgent,
	})
}

// GetXML fetches path and decodes the XML response into v.
func (e Endpoint) GetXML(ctx context.Context, op, path string, v any) error {
	body, err := e.Get(ctx, op, path)
	if err != nil {
		return err
	}
	return DecodeXML(op, body, v)
}

// DecodeXML unmarshals body into v. Any decode failure is marked malformed.
func DecodeXML(op string, body []byte, v any) error {
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return Wrap(ErrMalformed, "", op, "decode xml", err)
	}
	return nil
}
