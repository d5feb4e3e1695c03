// Package samurai lists the titles offered by an eShop storefront.
package samurai

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"titledb/internal/services"
	"titledb/internal/title"
)

// Shop selects the storefront.
type Shop int

const (
	Shop3DS  Shop = 1
	ShopWiiU Shop = 2
)

func (s Shop) String() string {
	switch s {
	case Shop3DS:
		return "3ds"
	case ShopWiiU:
		return "wiiu"
	default:
		return fmt.Sprintf("shop-%d", int(s))
	}
}

// MaxPageSize is the largest page the listing endpoint serves.
const MaxPageSize = 200

// Item is one listed title before enrichment.
type Item struct {
	EshopID     string
	ProductCode string
	Name        string
	IconURL     string
	Platform    int
	ReleaseDate string
}

// Page is one slice of a storefront listing.
type Page struct {
	Total int
	Items []Item
}

// Client talks to the listing service.
type Client struct {
	endpoint services.Endpoint
}

// New builds a listing client.
func New(baseURL string, client services.Doer, userAgent string) (*Client, error) {
	endpoint, err := services.NewEndpoint("samurai", baseURL, client, userAgent)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint}, nil
}

// Count returns the number of titles listed for region in shop.
func (c *Client) Count(ctx context.Context, region title.Region, shop Shop) (int, error) {
	page, err := c.Titles(ctx, region, shop, 1, 0)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// Titles fetches limit titles starting at offset.
func (c *Client) Titles(ctx context.Context, region title.Region, shop Shop, limit, offset int) (Page, error) {
	country := region.CountryCode()
	if country == "" {
		return Page{}, services.Wrap(services.ErrValidation, "samurai", "titles", fmt.Sprintf("region %s has no storefront", region), nil)
	}
	if limit < 1 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	op := fmt.Sprintf("list %s titles (%s, offset %d)", shop, country, offset)
	path := fmt.Sprintf("/samurai/ws/%s/titles?shop_id=%d&sort=new&limit=%d&offset=%d", country, int(shop), limit, offset)

	var doc listingXML
	if err := c.endpoint.GetXML(ctx, op, path, &doc); err != nil {
		return Page{}, err
	}
	page := Page{Total: doc.Contents.Total, Items: make([]Item, 0, len(doc.Contents.Content))}
	for _, content := range doc.Contents.Content {
		page.Items = append(page.Items, content.Title.item())
	}
	return page, nil
}

type listingXML struct {
	Contents struct {
		Total   int `xml:"total,attr"`
		Content []struct {
			Index int      `xml:"index,attr"`
			Title titleXML `xml:"title"`
		} `xml:"content"`
	} `xml:"contents"`
}

type titleXML struct {
	ID          string `xml:"id,attr"`
	ProductCode string `xml:"product_code"`
	Name        string `xml:"name"`
	IconURL     string `xml:"icon_url"`
	Platform    struct {
		ID int `xml:"id,attr"`
	} `xml:"platform"`
	ReleaseDate string `xml:"release_date_on_eshop"`
}

func (t titleXML) item() Item {
	return Item{
		EshopID:     strings.TrimSpace(t.ID),
		ProductCode: ShortProductCode(t.ProductCode),
		Name:        CleanName(t.Name),
		IconURL:     strings.TrimSpace(t.IconURL),
		Platform:    t.Platform.ID,
		ReleaseDate: strings.TrimSpace(t.ReleaseDate),
	}
}

// ShortProductCode keeps the text after the last '-' ("WUP-P-ARPE" -> "ARPE").
func ShortProductCode(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.LastIndex(code, "-"); i >= 0 {
		return code[i+1:]
	}
	return code
}

// CleanName drops line-break markup and normalizes to NFC.
func CleanName(name string) string {
	return norm.NFC.String(strings.ReplaceAll(name, "<br>", ""))
}
