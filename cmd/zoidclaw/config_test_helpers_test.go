package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestConfig writes a minimal valid YAML config to a temp file and
// returns its path. extra is appended verbatim so individual tests can
// layer on cron/sessions/heartbeat sections.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zoidclaw.yaml")
	body := `
identity:
  agent_name: testbot
providers:
  - name: openai
    api_key: sk-test
    default_model: gpt-4o-mini
workspace:
  path: ` + dir + `
` + extra
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}
