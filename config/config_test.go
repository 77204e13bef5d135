package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
syncInterval: 5m
ns1:
  apiKey: testkey
log:
  level: debug
  env: dev
reconcile:
  dryRun: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("syncInterval = %v, want 5m", cfg.SyncInterval)
	}
	if cfg.NS1.APIKey != "testkey" {
		t.Errorf("apiKey = %q", cfg.NS1.APIKey)
	}
	if cfg.NS1.Endpoint != defaultEndpoint {
		t.Errorf("endpoint = %q, want default", cfg.NS1.Endpoint)
	}
	if cfg.NS1.RetryMax != defaultRetryMax {
		t.Errorf("retryMax = %d, want default", cfg.NS1.RetryMax)
	}
	if !cfg.Reconcile.DryRun {
		t.Error("dryRun = false, want true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Env != "dev" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
ns1:
  apiKey: fromfile
`)

	t.Setenv("NS1_SYNC_API_KEY", "fromenv")
	t.Setenv("NS1_SYNC_DRYRUN", "true")
	t.Setenv("NS1_SYNC_INTERVAL", "30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NS1.APIKey != "fromenv" {
		t.Errorf("apiKey = %q, want env override", cfg.NS1.APIKey)
	}
	if !cfg.Reconcile.DryRun {
		t.Error("dryRun not overridden from env")
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("syncInterval = %v, want 30s", cfg.SyncInterval)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "log:\n  level: info\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestLoadDeclarations(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resources.yaml", `
zones:
  - zone: example.test
    refresh: 200
records:
  - zone: example.test
    domain: www
    type: A
    mode: append
    answers:
      - answer: ["1.1.1.1"]
        meta:
          up: true
  - zone: example.test
    domain: purged
    type: A
    mode: purge
    answers: []
tsigKeys:
  - name: xfr-key
    algorithm: hmac-sha256
    secret: c2VjcmV0
`)

	decls, err := LoadDeclarations(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(decls.Zones) != 1 || len(decls.Records) != 2 || len(decls.TSIGKeys) != 1 {
		t.Fatalf("unexpected declaration counts: %+v", decls)
	}

	zone := decls.Zones[0]
	if zone.Refresh == nil || *zone.Refresh != 200 {
		t.Errorf("zone refresh = %v, want 200", zone.Refresh)
	}
	if zone.TTL != nil {
		t.Error("undeclared ttl decoded as set")
	}

	// Absent answers vs explicitly empty answers must stay distinguishable.
	appended := decls.Records[0]
	if appended.Answers == nil || len(appended.Answers) != 1 {
		t.Fatalf("append record answers = %v", appended.Answers)
	}
	if got := appended.Answers[0].Meta["up"]; got != true {
		t.Errorf("answer meta.up = %v, want true", got)
	}

	purged := decls.Records[1]
	if purged.Answers == nil {
		t.Fatal("explicit empty answers decoded as absent")
	}
	if len(purged.Answers) != 0 {
		t.Fatalf("purged answers = %v, want empty", purged.Answers)
	}
}

func TestLoadDeclarationsRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resources.yaml", `
zones:
  - zone: example.test
    refres: 200
`)

	if _, err := LoadDeclarations(path); err == nil {
		t.Fatal("expected error for misspelled field")
	}
}
