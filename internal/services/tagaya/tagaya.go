// Package tagaya reads the eShop update lists: the numbered Wii U version
// lists served as XML and the single binary 3DS version list.
package tagaya

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"titledb/internal/services"
)

// The Wii U list server ignores the region segment.
const listPrefix = "/tagaya/versionlist/EUR/EU"

// Update is one (title id, version) row of a Wii U version list. Values are
// raw so callers decide how to treat identifiers they do not recognize.
type Update struct {
	TitleID string
	Version string
}

// Client talks to the Wii U update list service.
type Client struct {
	endpoint services.Endpoint
}

// New builds a Wii U update list client.
func New(baseURL string, client services.Doer, userAgent string) (*Client, error) {
	endpoint, err := services.NewEndpoint("tagaya", baseURL, client, userAgent)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint}, nil
}

// LatestVersion returns the number of the newest published list.
func (c *Client) LatestVersion(ctx context.Context) (int, error) {
	const op = "fetch latest update list version"
	var doc struct {
		Version string `xml:"version"`
	}
	if err := c.endpoint.GetXML(ctx, op, listPrefix+"/latest_version", &doc); err != nil {
		return 0, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(doc.Version))
	if err != nil {
		return 0, services.Wrap(services.ErrMalformed, "tagaya", op, fmt.Sprintf("version %q", doc.Version), err)
	}
	return version, nil
}

// VersionList returns the rows of list number n.
func (c *Client) VersionList(ctx context.Context, n int) ([]Update, error) {
	op := fmt.Sprintf("fetch update list %d", n)
	var doc struct {
		Titles []struct {
			ID      string `xml:"id"`
			Version string `xml:"version"`
		} `xml:"titles>title"`
	}
	if err := c.endpoint.GetXML(ctx, op, fmt.Sprintf("%s/list/%d.versionlist", listPrefix, n), &doc); err != nil {
		return nil, err
	}
	updates := make([]Update, 0, len(doc.Titles))
	for _, row := range doc.Titles {
		updates = append(updates, Update{
			TitleID: strings.TrimSpace(row.ID),
			Version: strings.TrimSpace(row.Version),
		})
	}
	return updates, nil
}

// CTRClient fetches the binary 3DS version list.
type CTRClient struct {
	endpoint services.Endpoint
}

// NewCTR builds a 3DS version list client.
func NewCTR(baseURL string, client services.Doer, userAgent string) (*CTRClient, error) {
	endpoint, err := services.NewEndpoint("tagaya", baseURL, client, userAgent)
	if err != nil {
		return nil, err
	}
	return &CTRClient{endpoint: endpoint}, nil
}

// VersionList returns the raw version list blob.
func (c *CTRClient) VersionList(ctx context.Context) ([]byte, error) {
	return c.endpoint.Get(ctx, "fetch 3DS version list", "/tagaya/versionlist")
}
