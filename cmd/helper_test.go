package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/ssrwatch"
)

// setGlobals points the package globals to test values for the duration of t.
func setGlobals(t *testing.T, config string) *bytes.Buffer {
	t.Helper()
	oldConfig, oldStdout, oldStderr, oldGeteuid := *configPath, stdout, stderr, geteuid
	t.Cleanup(func() {
		*configPath, stdout, stderr, geteuid = oldConfig, oldStdout, oldStderr, oldGeteuid
	})
	var out bytes.Buffer
	*configPath = config
	stdout = &out
	stderr = &bytes.Buffer{}
	geteuid = func() int { return 1000 }
	return &out
}

// upstream serves the prime page and lists keyed by file name.
func upstream(t *testing.T, lists map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/prime", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>short sale circuit breaker</html>"))
	})
	mux.HandleFunc("/lists/", func(w http.ResponseWriter, r *http.Request) {
		doc, ok := lists[strings.TrimPrefix(r.URL.Path, "/lists/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(doc))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeSetup writes a configuration using srv as upstream and a positions
// file, and returns the configuration path.
func writeSetup(t *testing.T, srv *httptest.Server, positions string, edits ...func(*ssrwatch.Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := &ssrwatch.Config{
		WorkDir:    dir,
		MailTo:     "me@example.com",
		SendStyle:  ssrwatch.Attachment,
		StocksPath: "stocks.txt",
		Timezone:   "America/New_York",
	}
	if srv != nil {
		cfg.Upstream = ssrwatch.UpstreamConfig{PrimeURL: srv.URL + "/prime", BaseURL: srv.URL + "/lists/"}
	}
	for _, edit := range edits {
		edit(cfg)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := writeConfig(path, cfg, false); err != nil {
		t.Fatalf("writeConfig() unexpected error = %v", err)
	}
	if positions != "" {
		if err := os.WriteFile(filepath.Join(dir, "stocks.txt"), []byte(positions), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

// runDirs lists the run directories left in dir.
func runDirs(t *testing.T, dir string) []string {
	t.Helper()
	got, err := filepath.Glob(filepath.Join(dir, "run-*"))
	if err != nil {
		t.Fatal(err)
	}
	return got
}
