package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
workspace:
  host: localhost
  port: 3307
  user: gisuser
  password: gispass
  database: landbase
  tls: disable
  alias_table: field_aliases

tables:
  parcels:
    table: tax_parcels
    id_field: PARCEL_ID
  buildings:
    table: buildings

transfer:
  max_selection: 50
  reset_selection: false

portal:
  url: https://example.maps.arcgis.com
  page_size: 50

species:
  list_type: fulllist
  timeout_seconds: 10

logging:
  level: debug
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Workspace.Host != "localhost" {
		t.Errorf("expected workspace host 'localhost', got %s", cfg.Workspace.Host)
	}
	if cfg.Workspace.Port != 3307 {
		t.Errorf("expected workspace port 3307, got %d", cfg.Workspace.Port)
	}
	if cfg.Workspace.Database != "landbase" {
		t.Errorf("expected workspace database 'landbase', got %s", cfg.Workspace.Database)
	}
	if cfg.Workspace.AliasTable != "field_aliases" {
		t.Errorf("expected alias table 'field_aliases', got %s", cfg.Workspace.AliasTable)
	}
	// Unset values keep their defaults
	if cfg.Workspace.MaxConnections != 4 {
		t.Errorf("expected default max_connections 4, got %d", cfg.Workspace.MaxConnections)
	}

	if len(cfg.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(cfg.Tables))
	}
	parcels := cfg.GetTable("parcels")
	if parcels.Table != "tax_parcels" || parcels.IDField != "PARCEL_ID" {
		t.Errorf("unexpected parcels table config: %+v", parcels)
	}
	buildings := cfg.GetTable("buildings")
	if buildings.IDField != DefaultIDField {
		t.Errorf("expected buildings id field %s, got %s", DefaultIDField, buildings.IDField)
	}

	if cfg.Transfer.MaxSelection != 50 {
		t.Errorf("expected max_selection 50, got %d", cfg.Transfer.MaxSelection)
	}
	if cfg.Transfer.ResetSelection {
		t.Errorf("expected reset_selection false")
	}

	if cfg.Portal.PageSize != 50 {
		t.Errorf("expected portal page_size 50, got %d", cfg.Portal.PageSize)
	}
	if cfg.Portal.MaxItems != 500 {
		t.Errorf("expected default portal max_items 500, got %d", cfg.Portal.MaxItems)
	}
	if cfg.Species.ListType != "fulllist" {
		t.Errorf("expected species list_type 'fulllist', got %s", cfg.Species.ListType)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env.yaml")

	t.Setenv("GIS_DB_PASSWORD", "s3cret")
	t.Setenv("PORTAL_TOKEN", "tok-123")

	configContent := `
workspace:
  host: localhost
  user: gisuser
  password: ${GIS_DB_PASSWORD}
  database: landbase

portal:
  url: https://example.maps.arcgis.com
  token: $PORTAL_TOKEN
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Workspace.Password != "s3cret" {
		t.Errorf("expected substituted password, got %s", cfg.Workspace.Password)
	}
	if cfg.Portal.Token != "tok-123" {
		t.Errorf("expected substituted token, got %s", cfg.Portal.Token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("GISADMIN_TEST_VAR", "value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${GISADMIN_TEST_VAR}", "value"},
		{"$GISADMIN_TEST_VAR", "value"},
		{"prefix-${GISADMIN_TEST_VAR}-suffix", "prefix-value-suffix"},
		{"${GISADMIN_UNSET_VAR}", "${GISADMIN_UNSET_VAR}"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandEnvVar(tt.input); got != tt.expected {
				t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
