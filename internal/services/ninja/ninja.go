// Package ninja fetches per-title commerce details (title id, size, version)
// from the eShop enrichment service. The service requires the console client
// certificate, so the client must be built on a mutual-TLS HTTP client.
package ninja

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"titledb/internal/services"
	"titledb/internal/title"
)

// ECInfo is the enrichment payload for one listed title.
type ECInfo struct {
	TitleID     string
	ContentSize uint64
	Version     string
}

// Client talks to the enrichment service.
type Client struct {
	endpoint services.Endpoint
}

// New builds an enrichment client. client should present the eShop client
// certificate.
func New(baseURL string, client services.Doer, userAgent string) (*Client, error) {
	endpoint, err := services.NewEndpoint("ninja", baseURL, client, userAgent)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint}, nil
}

// ECInfo fetches the commerce details for eshopID in region.
func (c *Client) ECInfo(ctx context.Context, region title.Region, eshopID string) (ECInfo, error) {
	country := region.CountryCode()
	if country == "" {
		return ECInfo{}, services.Wrap(services.ErrValidation, "ninja", "ec_info", fmt.Sprintf("region %s has no storefront", region), nil)
	}
	op := fmt.Sprintf("fetch ec_info for %s-%s", country, eshopID)
	path := fmt.Sprintf("/ninja/ws/%s/title/%s/ec_info", country, url.PathEscape(eshopID))

	var doc struct {
		Info struct {
			TitleID     string `xml:"title_id"`
			ContentSize string `xml:"content_size"`
			Version     string `xml:"title_version"`
		} `xml:"title_ec_info"`
	}
	if err := c.endpoint.GetXML(ctx, op, path, &doc); err != nil {
		return ECInfo{}, err
	}

	info := ECInfo{
		TitleID: strings.TrimSpace(doc.Info.TitleID),
		Version: strings.TrimSpace(doc.Info.Version),
	}
	if info.TitleID == "" {
		return ECInfo{}, services.Wrap(services.ErrMalformed, "ninja", op, "response has no title_id", nil)
	}
	if raw := strings.TrimSpace(doc.Info.ContentSize); raw != "" {
		size, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return ECInfo{}, services.Wrap(services.ErrMalformed, "ninja", op, fmt.Sprintf("content_size %q", raw), err)
		}
		info.ContentSize = size
	}
	return info, nil
}
