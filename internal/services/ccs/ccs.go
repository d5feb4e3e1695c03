// Package ccs downloads title metadata (TMD) blobs from the eShop content
// server.
package ccs

import (
	"context"
	"fmt"

	"titledb/internal/services"
	"titledb/internal/titleid"
)

// Client talks to the content server.
type Client struct {
	endpoint services.Endpoint
}

// New builds a content server client.
func New(baseURL string, client services.Doer, userAgent string) (*Client, error) {
	endpoint, err := services.NewEndpoint("ccs", baseURL, client, userAgent)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint}, nil
}

// TMD fetches the metadata blob for id. Update identifiers are versioned, so
// version selects which revision is returned; it is ignored otherwise.
func (c *Client) TMD(ctx context.Context, id titleid.ID, version string) ([]byte, error) {
	path := fmt.Sprintf("/ccs/download/%s/tmd", id)
	op := fmt.Sprintf("fetch tmd for %s", id)
	if id.IsUpdate() {
		if version == "" {
			return nil, services.Wrap(services.ErrValidation, "ccs", op, "update requires a version", nil)
		}
		path += "." + version
		op += " v" + version
	}
	return c.endpoint.Get(ctx, op, path)
}
