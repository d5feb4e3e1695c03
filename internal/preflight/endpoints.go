package preflight

import (
	"context"

	"titledb/internal/config"
	"titledb/internal/services"
)

// CheckEndpointsFromConfig probes every configured eShop endpoint.
func CheckEndpointsFromConfig(ctx context.Context, cfg *config.Config, client services.Doer) []Result {
	if cfg == nil {
		return nil
	}
	endpoints := []struct {
		name string
		url  string
	}{
		{"Listing (samurai)", cfg.Endpoints.Samurai},
		{"Enrichment (ninja)", cfg.Endpoints.Ninja},
		{"Wii U update lists (tagaya)", cfg.Endpoints.Tagaya},
		{"3DS version list (tagaya)", cfg.Endpoints.TagayaCTR},
		{"Title metadata (ccs)", cfg.Endpoints.CCS},
	}
	results := make([]Result, 0, len(endpoints))
	for _, e := range endpoints {
		results = append(results, CheckEndpoint(ctx, e.name, e.url, client))
	}
	return results
}
