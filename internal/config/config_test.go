package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// cliWithPath returns a CLI struct pointing at the given config file.
func cliWithPath(path string) *CLI {
	return &CLI{Config: path}
}

// writeConfig writes data to a config.toml in a temp dir and returns its path.
func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
[routing]
legacy_via_url = "https://via.hypothes.is"
`

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 9000
body_max_bytes = 5242880

[upstream]
timeout_seconds = 60
idle_connections = 50
max_redirects = 5
user_agent = "test-agent"

[routing]
legacy_via_url = "https://via.hypothes.is/"
nginx_server = "http://via3.hypothes.is"
client_embed_url = "http://hypothes.is/embed.js"

[log]
level = "debug"
format = "text"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Upstream.TimeoutSeconds != 60 {
		t.Errorf("Upstream.TimeoutSeconds = %d, want %d", cfg.Upstream.TimeoutSeconds, 60)
	}
	if cfg.Upstream.MaxRedirects != 5 {
		t.Errorf("Upstream.MaxRedirects = %d, want %d", cfg.Upstream.MaxRedirects, 5)
	}
	if cfg.Upstream.UserAgent != "test-agent" {
		t.Errorf("Upstream.UserAgent = %q, want %q", cfg.Upstream.UserAgent, "test-agent")
	}
	if cfg.Routing.LegacyViaURL != "https://via.hypothes.is" {
		t.Errorf("Routing.LegacyViaURL = %q, want trailing slash trimmed", cfg.Routing.LegacyViaURL)
	}
	if cfg.Routing.NginxServer != "http://via3.hypothes.is" {
		t.Errorf("Routing.NginxServer = %q, want %q", cfg.Routing.NginxServer, "http://via3.hypothes.is")
	}
	if cfg.Routing.ClientEmbedURL != "http://hypothes.is/embed.js" {
		t.Errorf("Routing.ClientEmbedURL = %q, want %q", cfg.Routing.ClientEmbedURL, "http://hypothes.is/embed.js")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(cliWithPath(writeConfig(t, minimalConfig)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default Server.Port = %d, want %d", cfg.Server.Port, 8000)
	}
	if cfg.Server.BodyMaxBytes != 1024*1024 {
		t.Errorf("default Server.BodyMaxBytes = %d, want %d", cfg.Server.BodyMaxBytes, 1024*1024)
	}
	if cfg.Upstream.TimeoutSeconds != 30 {
		t.Errorf("default Upstream.TimeoutSeconds = %d, want %d", cfg.Upstream.TimeoutSeconds, 30)
	}
	if cfg.Upstream.MaxRedirects != 10 {
		t.Errorf("default Upstream.MaxRedirects = %d, want %d", cfg.Upstream.MaxRedirects, 10)
	}
	if cfg.Upstream.UserAgent == "" {
		t.Error("expected default Upstream.UserAgent")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("default Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(cliWithPath("/nonexistent/config.toml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	_, err := Load(cliWithPath(writeConfig(t, "[routing\nlegacy_via_url = ")))
	if err == nil {
		t.Fatal("Load() expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error = %q, want mention of parse", err)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "0.0.0.0"
port = 8000

[routing]
legacy_via_url = "https://via.hypothes.is"

[log]
level = "info"
`)

	cli := &CLI{
		Config:       path,
		Host:         "127.0.0.1",
		Port:         3000,
		LegacyViaURL: "http://localhost:9080",
		LogLevel:     "debug",
	}

	cfg, err := Load(cli)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q (CLI override)", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d (CLI override)", cfg.Server.Port, 3000)
	}
	if cfg.Routing.LegacyViaURL != "http://localhost:9080" {
		t.Errorf("Routing.LegacyViaURL = %q, want %q (CLI override)", cfg.Routing.LegacyViaURL, "http://localhost:9080")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q (CLI override)", cfg.Log.Level, "debug")
	}
}

func TestLoad_CLISuppliesLegacyURL(t *testing.T) {
	cli := &CLI{
		Config:       writeConfig(t, "[log]\nlevel = \"info\"\n"),
		LegacyViaURL: "https://via.hypothes.is",
	}
	if _, err := Load(cli); err != nil {
		t.Fatalf("Load() error = %v; legacy URL from CLI should satisfy validation", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantText string
	}{
		{
			name:     "missing legacy url",
			data:     "[log]\nlevel = \"info\"\n",
			wantText: "routing.legacy_via_url",
		},
		{
			name:     "legacy url not a url",
			data:     "[routing]\nlegacy_via_url = \"not a url\"\n",
			wantText: "routing.legacy_via_url",
		},
		{
			name:     "legacy url wrong scheme",
			data:     "[routing]\nlegacy_via_url = \"ftp://via.hypothes.is\"\n",
			wantText: "http or https",
		},
		{
			name:     "bad nginx server",
			data:     minimalConfig + "nginx_server = \"nope\"\n",
			wantText: "routing.nginx_server",
		},
		{
			name:     "negative port",
			data:     minimalConfig + "[server]\nport = -1\n",
			wantText: "server.port",
		},
		{
			name:     "port too large",
			data:     minimalConfig + "[server]\nport = 70000\n",
			wantText: "server.port",
		},
		{
			name:     "negative body max bytes",
			data:     minimalConfig + "[server]\nbody_max_bytes = -1\n",
			wantText: "server.body_max_bytes",
		},
		{
			name:     "negative timeout",
			data:     minimalConfig + "[upstream]\ntimeout_seconds = -5\n",
			wantText: "upstream.timeout_seconds",
		},
		{
			name:     "negative max redirects",
			data:     minimalConfig + "[upstream]\nmax_redirects = -1\n",
			wantText: "upstream.max_redirects",
		},
		{
			name:     "invalid log level",
			data:     minimalConfig + "[log]\nlevel = \"verbose\"\n",
			wantText: "log.level",
		},
		{
			name:     "invalid log format",
			data:     minimalConfig + "[log]\nformat = \"xml\"\n",
			wantText: "log.format",
		},
		{
			name:     "rate limit enabled without rate",
			data:     minimalConfig + "[server.rate_limit]\nenabled = true\nrequests_per_second = 0\n",
			wantText: "requests_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(cliWithPath(writeConfig(t, tt.data)))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantText)
			}
		})
	}
}

func TestLoad_RateLimitConfig_Enabled(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[server.rate_limit]
enabled = true
requests_per_second = 50.0
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("expected RateLimit.Enabled = true")
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 50.0 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 50.0", cfg.Server.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_RateLimitConfig_Disabled(t *testing.T) {
	cfg, err := Load(cliWithPath(writeConfig(t, minimalConfig)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.RateLimit.Enabled {
		t.Error("expected RateLimit.Enabled = false by default")
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("VIA_PROXY_TEST_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIA_PROXY_TEST_VALUE", "")
	os.Unsetenv("VIA_PROXY_TEST_VALUE")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("VIA_PROXY_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("VIA_PROXY_TEST_VALUE = %q, want %q", got, "from-dotenv")
	}
}

func TestLoadEnv_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("VIA_PROXY_TEST_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIA_PROXY_TEST_VALUE", "from-env")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("VIA_PROXY_TEST_VALUE"); got != "from-env" {
		t.Errorf("VIA_PROXY_TEST_VALUE = %q, want %q", got, "from-env")
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadEnv() error = %v, want nil for missing file", err)
	}
}

func TestFindConfigInPaths_Found(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	got := findConfigInPaths([]string{path})
	if got != path {
		t.Errorf("findConfigInPaths() = %q, want %q", got, path)
	}
}

func TestFindConfigInPaths_NotFound(t *testing.T) {
	got := findConfigInPaths([]string{"/nonexistent/a.toml", "/nonexistent/b.toml"})
	if got != "" {
		t.Errorf("findConfigInPaths() = %q, want empty", got)
	}
}

func TestFindConfigInPaths_Priority(t *testing.T) {
	path1 := writeConfig(t, minimalConfig)
	path2 := writeConfig(t, minimalConfig)

	got := findConfigInPaths([]string{path1, path2})
	if got != path1 {
		t.Errorf("findConfigInPaths() = %q, want first match %q", got, path1)
	}
}

func TestLoad_MetricsPathNoLeadingSlash(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[metrics]
enabled = true
path = "metrics"
`)

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for metrics.path without leading slash, got nil")
	}
	if !strings.Contains(err.Error(), "metrics.path") {
		t.Errorf("error = %q, want mention of metrics.path", err)
	}
}

func TestLoad_MetricsPathConflictsWithRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"status", "/_status"},
		{"healthz", "/healthz"},
		{"proxy/status", "/proxy/status"},
		{"pdf exact", "/pdf"},
		{"pdf sub", "/pdf/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeConfig(t, minimalConfig+`
[metrics]
enabled = true
path = "`+tt.path+`"
`)

			_, err := Load(cliWithPath(cfgPath))
			if err == nil {
				t.Fatalf("Load() expected error for metrics.path=%q conflicting with route, got nil", tt.path)
			}
			if !strings.Contains(err.Error(), "conflicts") {
				t.Errorf("error = %q, want mention of conflict", err)
			}
		})
	}
}

func TestLoad_MetricsDisabledSkipsPathValidation(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[metrics]
enabled = false
path = "bad-no-slash"
`)

	if _, err := Load(cliWithPath(path)); err != nil {
		t.Fatalf("Load() error = %v; disabled metrics should skip path validation", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	sc := &ServerConfig{Host: "127.0.0.1", Port: 3000}
	want := "127.0.0.1:3000"
	if got := sc.Addr(); got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
}
