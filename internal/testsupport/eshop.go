package testsupport

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/julienschmidt/httprouter"
)

// ListedTitle is one storefront entry served by the fake listing endpoint.
type ListedTitle struct {
	EshopID     string
	ProductCode string
	Name        string
	IconURL     string
	Platform    int
	ReleaseDate string
}

// ECInfo is the enrichment response for one eShop id.
type ECInfo struct {
	TitleID     string
	ContentSize string
	Version     string
}

// UpdateRow is one row of a Wii U update list.
type UpdateRow struct {
	TitleID string
	Version string
}

// EshopServer is an in-process stand-in for the four eShop services. Tests
// populate the fixture fields before issuing requests.
type EshopServer struct {
	URL string

	// Listings is keyed by country code and shop id ("US/2").
	Listings map[string][]ListedTitle
	ECInfo   map[string]ECInfo
	// LatestList is the newest Wii U update list number.
	LatestList  int
	UpdateLists map[int][]UpdateRow
	// Forbidden update lists answer 403; lists missing from UpdateLists
	// answer 404.
	Forbidden map[int]bool
	// VersionList3DS is the binary 3DS version list; nil answers 404.
	VersionList3DS []byte
	// TMDs is keyed by "ID" or "ID.version".
	TMDs map[string][]byte
	// FailTMD answers 500 for the listed TMD keys.
	FailTMD map[string]bool

	mu       sync.Mutex
	requests []string
	agents   map[string]struct{}
}

// NewEshopServer starts a fake eShop and closes it when the test ends.
func NewEshopServer(t testing.TB) *EshopServer {
	t.Helper()

	s := &EshopServer{
		Listings:    map[string][]ListedTitle{},
		ECInfo:      map[string]ECInfo{},
		UpdateLists: map[int][]UpdateRow{},
		Forbidden:   map[int]bool{},
		TMDs:        map[string][]byte{},
		FailTMD:     map[string]bool{},
		agents:      map[string]struct{}{},
	}
	router := httprouter.New()
	router.GET("/samurai/ws/:country/titles", s.listing)
	router.GET("/ninja/ws/:country/title/:id/ec_info", s.ecInfo)
	router.GET("/tagaya/versionlist", s.versionList3DS)
	router.GET("/tagaya/versionlist/EUR/EU/latest_version", s.latestVersion)
	router.GET("/tagaya/versionlist/EUR/EU/list/:file", s.updateList)
	router.GET("/ccs/download/:id/:file", s.tmd)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.agents[r.UserAgent()] = struct{}{}
		s.mu.Unlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	s.URL = server.URL
	return s
}

// Requests returns the request URIs served so far.
func (s *EshopServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestsWithPrefix returns the request URIs starting with prefix.
func (s *EshopServer) RequestsWithPrefix(prefix string) []string {
	var matched []string
	for _, uri := range s.Requests() {
		if strings.HasPrefix(uri, prefix) {
			matched = append(matched, uri)
		}
	}
	return matched
}

// UserAgents returns every User-Agent header seen.
func (s *EshopServer) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	agents := make([]string, 0, len(s.agents))
	for agent := range s.agents {
		agents = append(agents, agent)
	}
	return agents
}

func (s *EshopServer) listing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	titles := s.Listings[ps.ByName("country")+"/"+query.Get("shop_id")]
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	if limit <= 0 {
		limit = len(titles)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, `<eshop><contents length="%d" offset="%d" total="%d">`, limit, offset, len(titles))
	for i := offset; i < len(titles) && i < offset+limit; i++ {
		item := titles[i]
		fmt.Fprintf(&buf, `<content index="%d"><title id="%s">`, i+1, escape(item.EshopID))
		fmt.Fprintf(&buf, `<product_code>%s</product_code>`, escape(item.ProductCode))
		fmt.Fprintf(&buf, `<name>%s</name>`, escape(item.Name))
		fmt.Fprintf(&buf, `<icon_url>%s</icon_url>`, escape(item.IconURL))
		fmt.Fprintf(&buf, `<platform id="%d" device="WUP"><name>platform</name></platform>`, item.Platform)
		if item.ReleaseDate != "" {
			fmt.Fprintf(&buf, `<release_date_on_eshop>%s</release_date_on_eshop>`, escape(item.ReleaseDate))
		}
		buf.WriteString(`</title></content>`)
	}
	buf.WriteString(`</contents></eshop>`)
	writeXML(w, buf.Bytes())
}

func (s *EshopServer) ecInfo(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	info, ok := s.ECInfo[ps.ByName("id")]
	if !ok {
		http.NotFound(w, nil)
		return
	}
	body := fmt.Sprintf(`%s<eshop><title_ec_info><title_id>%s</title_id><content_size>%s</content_size><title_version>%s</title_version></title_ec_info></eshop>`,
		xml.Header, escape(info.TitleID), escape(info.ContentSize), escape(info.Version))
	writeXML(w, []byte(body))
}

func (s *EshopServer) latestVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	body := fmt.Sprintf(`%s<version_list_info><version>%d</version><fqdn>tagaya.example</fqdn></version_list_info>`, xml.Header, s.LatestList)
	writeXML(w, []byte(body))
}

func (s *EshopServer) updateList(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	n, err := strconv.Atoi(strings.TrimSuffix(ps.ByName("file"), ".versionlist"))
	if err != nil {
		http.Error(w, "bad list", http.StatusBadRequest)
		return
	}
	if s.Forbidden[n] {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	rows, ok := s.UpdateLists[n]
	if !ok {
		http.NotFound(w, nil)
		return
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, `<version_list><version>%d</version><titles>`, n)
	for _, row := range rows {
		fmt.Fprintf(&buf, `<title><id>%s</id><version>%s</version></title>`, escape(row.TitleID), escape(row.Version))
	}
	buf.WriteString(`</titles></version_list>`)
	writeXML(w, buf.Bytes())
}

func (s *EshopServer) versionList3DS(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if s.VersionList3DS == nil {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(s.VersionList3DS)
}

func (s *EshopServer) tmd(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	key := ps.ByName("id")
	file := ps.ByName("file")
	switch {
	case file == "tmd":
	case strings.HasPrefix(file, "tmd."):
		key += "." + strings.TrimPrefix(file, "tmd.")
	default:
		http.NotFound(w, nil)
		return
	}
	if s.FailTMD[key] {
		http.Error(w, "upstream failure", http.StatusInternalServerError)
		return
	}
	blob, ok := s.TMDs[key]
	if !ok {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(blob)
}

func writeXML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
