package title

// Region is the store region a listing was crawled from.
type Region int

const (
	RegionNone Region = iota
	USA
	EUR
	JPN
	KOR
	ALL
)

var regionNames = [...]string{"None", "USA", "EUR", "JPN", "KOR", "ALL"}

var countryCodes = map[Region]string{
	USA: "US",
	EUR: "GB",
	JPN: "JP",
	KOR: "KR",
}

func (r Region) String() string {
	if r < 0 || int(r) >= len(regionNames) {
		return regionNames[RegionNone]
	}
	return regionNames[r]
}

// CountryCode returns the storefront country used to list r, or "".
func (r Region) CountryCode() string {
	return countryCodes[r]
}

// ParseRegion maps a stored region name back to its value. Unknown names,
// including the "N/A" and empty sentinels, yield RegionNone.
func ParseRegion(name string) Region {
	for i, n := range regionNames {
		if n == name {
			return Region(i)
		}
	}
	return RegionNone
}

// ListingRegions returns the non-aggregate regions in crawl order.
func ListingRegions() []Region {
	return []Region{USA, EUR, JPN, KOR}
}
