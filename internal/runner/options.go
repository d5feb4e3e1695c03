package runner

import (
	"fmt"
	"strings"
)

// Family is a console family of the eShop.
type Family int

const (
	WiiU Family = iota + 1
	ThreeDS
)

func (f Family) String() string {
	switch f {
	case WiiU:
		return "Wii U"
	case ThreeDS:
		return "3DS"
	default:
		return fmt.Sprintf("family-%d", int(f))
	}
}

// Families lists every family in run order.
func Families() []Family { return []Family{WiiU, ThreeDS} }

// ParseFamily accepts "wiiu" and "3ds" in any case.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wiiu", "wii-u", "wup":
		return WiiU, nil
	case "3ds", "ctr":
		return ThreeDS, nil
	default:
		return 0, fmt.Errorf("unknown console family %q (want wiiu or 3ds)", name)
	}
}

// Selection picks families for one pipeline.
type Selection struct {
	WiiU    bool
	ThreeDS bool
}

// Has reports whether f is selected.
func (s Selection) Has(f Family) bool {
	switch f {
	case WiiU:
		return s.WiiU
	case ThreeDS:
		return s.ThreeDS
	default:
		return false
	}
}

// Set selects f.
func (s *Selection) Set(f Family) {
	switch f {
	case WiiU:
		s.WiiU = true
	case ThreeDS:
		s.ThreeDS = true
	}
}

// Any reports whether at least one family is selected.
func (s Selection) Any() bool { return s.WiiU || s.ThreeDS }

// Options selects the pipelines of a run.
type Options struct {
	Titles  Selection
	Updates Selection
	DLCs    Selection
}

// Empty reports whether nothing would be crawled.
func (o Options) Empty() bool {
	return !o.Titles.Any() && !o.Updates.Any() && !o.DLCs.Any()
}

// Describe renders the selection for logs and prompts.
func (o Options) Describe() string {
	var parts []string
	for _, p := range []struct {
		name string
		sel  Selection
	}{{"titles", o.Titles}, {"updates", o.Updates}, {"dlcs", o.DLCs}} {
		for _, f := range Families() {
			if p.sel.Has(f) {
				parts = append(parts, f.String()+" "+p.name)
			}
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
