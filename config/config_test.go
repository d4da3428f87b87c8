package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Graph.Engine != "batch" {
		t.Errorf("expected default engine batch, got %s", cfg.Graph.Engine)
	}
	if cfg.Graph.Identity != "memory" {
		t.Errorf("expected default identity memory, got %s", cfg.Graph.Identity)
	}
	if cfg.Postprocess.ChunkSize != 1000 {
		t.Errorf("expected default chunk size 1000, got %d", cfg.Postprocess.ChunkSize)
	}
	if cfg.Postprocess.CommitEvery != 100_000 {
		t.Errorf("expected default commit interval 100000, got %d", cfg.Postprocess.CommitEvery)
	}
	if !cfg.Postprocess.MaterializeExistentials {
		t.Error("expected existential materialization by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing location",
			modify:  func(c *Config) { c.Graph.Location = "" },
			wantErr: true,
		},
		{
			name:    "unknown engine",
			modify:  func(c *Config) { c.Graph.Engine = "neo4j" },
			wantErr: true,
		},
		{
			name:    "unknown identity",
			modify:  func(c *Config) { c.Graph.Identity = "redis" },
			wantErr: true,
		},
		{
			name: "disk identity without threshold",
			modify: func(c *Config) {
				c.Graph.Identity = "disk"
				c.Graph.SpillThreshold = 0
			},
			wantErr: true,
		},
		{
			name:    "ontology without path",
			modify:  func(c *Config) { c.Ontologies = []OntologyConfig{{}} },
			wantErr: true,
		},
		{
			name:    "mapped property without sources",
			modify:  func(c *Config) { c.MappedProperties = []MappedProperty{{Name: "label"}} },
			wantErr: true,
		},
		{
			name:    "empty category name",
			modify:  func(c *Config) { c.Categories = map[string]string{"http://ex.org/A": ""} },
			wantErr: true,
		},
		{
			name:    "zero chunk size",
			modify:  func(c *Config) { c.Postprocess.ChunkSize = 0 },
			wantErr: true,
		},
		{
			name: "nats without subject",
			modify: func(c *Config) {
				c.NATS.URL = "nats://localhost:4222"
				c.NATS.Subject = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "owlgraph.yaml")

	content := `
graph:
  location: "/data/go.db"
  engine: transactional
  identity: disk
  spillThreshold: 5000
ontologies:
  - path: "ontologies/**/*.jsonl"
    reasoner:
      enabled: true
      removeAxioms: [DisjointClasses]
      removeUnnecessaryEdges: false
mappedProperties:
  - name: label
    properties:
      - "http://www.w3.org/2000/01/rdf-schema#label"
categories:
  "http://purl.obolibrary.org/obo/GO_0008150": process
curies:
  go: "http://purl.obolibrary.org/obo/GO_"
postprocess:
  workers: 4
  materializeExistentials: false
nats:
  url: "nats://test:4222"
metricsFile: "/tmp/owlgraph.prom"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Graph.Location != "/data/go.db" {
		t.Errorf("expected location /data/go.db, got %s", cfg.Graph.Location)
	}
	if cfg.Graph.Engine != "transactional" {
		t.Errorf("expected engine transactional, got %s", cfg.Graph.Engine)
	}
	if cfg.Graph.SpillThreshold != 5000 {
		t.Errorf("expected spill threshold 5000, got %d", cfg.Graph.SpillThreshold)
	}
	if len(cfg.Graph.ExactNodeProperties) != 3 {
		t.Errorf("expected default exact properties to survive, got %v", cfg.Graph.ExactNodeProperties)
	}
	if len(cfg.Ontologies) != 1 || !cfg.Ontologies[0].Reasoner.Enabled {
		t.Fatalf("expected one reasoned ontology entry, got %+v", cfg.Ontologies)
	}
	r := cfg.Ontologies[0].Reasoner
	if r.RemoveUnnecessaryEdges == nil || *r.RemoveUnnecessaryEdges {
		t.Errorf("expected removeUnnecessaryEdges false, got %v", r.RemoveUnnecessaryEdges)
	}
	if r.AddDirectInferredEdges != nil {
		t.Errorf("expected addDirectInferredEdges unset, got %v", *r.AddDirectInferredEdges)
	}
	if got := cfg.Mapped()["label"]; len(got) != 1 {
		t.Errorf("expected one source for label, got %v", got)
	}
	if cfg.Categories["http://purl.obolibrary.org/obo/GO_0008150"] != "process" {
		t.Errorf("expected process category, got %v", cfg.Categories)
	}
	if cfg.Postprocess.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Postprocess.Workers)
	}
	if cfg.Postprocess.MaterializeExistentials {
		t.Error("expected materializeExistentials false")
	}
	if cfg.Postprocess.ChunkSize != 1000 {
		t.Errorf("expected default chunk size to survive, got %d", cfg.Postprocess.ChunkSize)
	}
	if cfg.NATS.Subject != "owlgraph.load.completed" {
		t.Errorf("expected default subject, got %s", cfg.NATS.Subject)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	base.Curies = map[string]string{"obo": "http://purl.obolibrary.org/obo/"}

	override := DefaultConfig()
	override.Graph.Location = "/override.db"
	override.Graph.Engine = ""
	override.Curies = map[string]string{"go": "http://purl.obolibrary.org/obo/GO_"}

	base.Merge(override)

	if base.Graph.Location != "/override.db" {
		t.Errorf("expected location /override.db, got %s", base.Graph.Location)
	}
	if base.Graph.Engine != "batch" {
		t.Errorf("expected engine to remain default, got %s", base.Graph.Engine)
	}
	if len(base.Curies) != 2 {
		t.Errorf("expected curies to merge, got %v", base.Curies)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Graph.Location = "saved.db"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Graph.Location != "saved.db" {
		t.Errorf("expected location saved.db, got %s", loaded.Graph.Location)
	}
}

func TestLoaderExplicitPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("graph:\n  engine: transactional\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Graph.Engine != "transactional" {
		t.Errorf("expected engine transactional, got %s", cfg.Graph.Engine)
	}

	if _, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadFromFileExpandsEnv(t *testing.T) {
	t.Setenv("OWLGRAPH_NATS_HOST", "nats.prod")

	path := filepath.Join(t.TempDir(), "owlgraph.yaml")
	content := "graph:\n  location: ${OWLGRAPH_DATA:-/var/lib/owlgraph}/graph.db\nnats:\n  url: nats://${OWLGRAPH_NATS_HOST}:4222\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Graph.Location != "/var/lib/owlgraph/graph.db" {
		t.Errorf("expected default location, got %s", cfg.Graph.Location)
	}
	if cfg.NATS.URL != "nats://nats.prod:4222" {
		t.Errorf("expected expanded NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, created, err := NewLoader(nil).EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if !created {
		t.Error("expected the user config to be created")
	}
	if path != filepath.Join(home, UserConfigDir, UserConfigFile) {
		t.Errorf("unexpected path %s", path)
	}

	_, created, err = NewLoader(nil).EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() second call error = %v", err)
	}
	if created {
		t.Error("an existing user config must not be rewritten")
	}
}
