package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"titledb/internal/config"
	"titledb/internal/preflight"
	"titledb/internal/prompt"
	"titledb/internal/testsupport"
)

type cliTestEnv struct {
	server     *testsupport.EshopServer
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"TITLEDB_DATA_DIR", "TITLEDB_CERT_PATH", "TITLEDB_PASS_PATH", "TITLEDB_NTFY_TOPIC"} {
		t.Setenv(key, "")
	}

	server := testsupport.NewEshopServer(t)
	server.Listings["US/2"] = []testsupport.ListedTitle{{
		EshopID:     "20010000000026",
		ProductCode: "WUP-P-ARPE",
		Name:        "Test Title",
		Platform:    124,
		ReleaseDate: "2015-01-01",
	}}
	server.ECInfo["20010000000026"] = testsupport.ECInfo{TitleID: "0005000010101C00", ContentSize: "391053332", Version: "0"}
	server.LatestList = 2
	server.UpdateLists[2] = []testsupport.UpdateRow{{TitleID: "0005000E10101C00", Version: "16"}}
	server.TMDs["0005000E10101C00.16"] = testsupport.TMD(t, "0005000E10101C00", 16, 1000, 24)
	server.TMDs["0005000C10101C00"] = testsupport.TMD(t, "0005000C10101C00", 0, 5000)

	base := []testsupport.ConfigOption{testsupport.WithServer(server.URL), testsupport.WithRegions("USA")}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "titledb.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{server: server, cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, string(data))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substring string) {
	t.Helper()
	if !strings.Contains(output, substring) {
		t.Fatalf("expected %q in output:\n%s", substring, output)
	}
}

func TestUpdateStatsAndCursor(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCredential())

	out, _, err := runCLI(t, []string{"update", "--titles", "wiiu", "--updates", "wiiu", "--dlcs", "wiiu", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	requireContains(t, out, "games.json")
	requireContains(t, out, "written")
	requireContains(t, out, "Cursor:   2")
	if got := testsupport.ReadFile(t, env.cfg.CursorPath()); got != "2" {
		t.Fatalf("cursor file = %q, want 2", got)
	}

	out, _, err = runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "updates.json")
	requireContains(t, out, "Wii U update cursor: 2")

	out, _, err = runCLI(t, []string{"cursor", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cursor show: %v", err)
	}
	requireContains(t, out, "Stored: yes")
	requireContains(t, out, "Value:  2")

	out, _, err = runCLI(t, []string{"cursor", "reset"}, env.configPath)
	if err != nil {
		t.Fatalf("cursor reset: %v", err)
	}
	requireContains(t, out, "Removed")

	out, _, err = runCLI(t, []string{"cursor", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cursor show: %v", err)
	}
	requireContains(t, out, "Stored: no")
	requireContains(t, out, "Value:  1")
}

func TestUpdateRejectsUnknownFamily(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"update", "--titles", "switch"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown console family") {
		t.Fatalf("expected family error, got %v", err)
	}
}

func TestUpdateWithoutSelectionRequiresFlags(t *testing.T) {
	if prompt.IsTerminal(os.Stdin) {
		t.Skip("stdin is a terminal")
	}
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"update"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--titles") {
		t.Fatalf("expected selection error, got %v", err)
	}
	if len(env.server.Requests()) != 0 {
		t.Fatalf("no request expected, got %v", env.server.Requests())
	}
}

func TestCheckReportsMissingCredential(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if !errors.Is(err, preflight.ErrFailed) {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	requireContains(t, out, "Client certificate")
	requireContains(t, out, "FAIL")
	requireContains(t, out, "Listing (samurai)")
}

func TestCheckPassesWithCredential(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCredential())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failure:\n%s", out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Regions:     USA")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("sample config must validate: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titledb.toml")
	testsupport.WriteFile(t, path, "[listing]\nregions = [\"MARS\"]\n")
	_, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil || !strings.Contains(err.Error(), "listing.regions") {
		t.Fatalf("expected region error, got %v", err)
	}
}

func TestLogsShowsNewestRunLog(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.cfg.Logging.Dir
	testsupport.WriteFile(t, filepath.Join(dir, "titledb-20240601T120000Z.log"), "old\n")
	testsupport.WriteFile(t, filepath.Join(dir, "titledb-20240602T120000Z.log"), "one\ntwo\nthree\n")

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("unexpected logs output %q", out)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}
