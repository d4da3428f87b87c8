// Package config provides configuration loading and management for owlgraph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	ssconfig "github.com/c360studio/semstreams/config"
	"gopkg.in/yaml.v3"
)

// Config represents the complete owlgraph configuration
type Config struct {
	Graph            GraphConfig       `yaml:"graph"`
	Ontologies       []OntologyConfig  `yaml:"ontologies"`
	MappedProperties []MappedProperty  `yaml:"mappedProperties"`
	Categories       map[string]string `yaml:"categories"`
	Curies           map[string]string `yaml:"curies"`
	Postprocess      PostprocessConfig `yaml:"postprocess"`
	NATS             NATSConfig        `yaml:"nats"`
	// MetricsFile receives load metrics in the Prometheus text format (empty = off)
	MetricsFile string `yaml:"metricsFile"`
}

// GraphConfig configures the graph store and the engine that fills it
type GraphConfig struct {
	// Location is the graph database file
	Location string `yaml:"location"`
	// Engine is "batch" (bulk, empty store only) or "transactional"
	Engine string `yaml:"engine"`
	// Identity is "memory" or "disk"
	Identity string `yaml:"identity"`
	// SpillThreshold is the in-memory key budget of disk identity maps
	SpillThreshold int `yaml:"spillThreshold"`
	// IndexedNodeProperties are copied to the full-text index
	IndexedNodeProperties []string `yaml:"indexedNodeProperties"`
	// ExactNodeProperties are copied to the exact index
	ExactNodeProperties []string `yaml:"exactNodeProperties"`
}

// OntologyConfig names a set of ontology documents and how to reason over them
type OntologyConfig struct {
	// Path is a file or doublestar glob
	Path     string         `yaml:"path"`
	Reasoner ReasonerConfig `yaml:"reasoner"`
}

// ReasonerConfig configures inference for the ontologies of one entry.
// Unset flags default to true.
type ReasonerConfig struct {
	Enabled                 bool     `yaml:"enabled"`
	RemoveAxioms            []string `yaml:"removeAxioms,omitempty"`
	AddDirectInferredEdges  *bool    `yaml:"addDirectInferredEdges,omitempty"`
	RemoveUnnecessaryEdges  *bool    `yaml:"removeUnnecessaryEdges,omitempty"`
	AddInferredEquivalences *bool    `yaml:"addInferredEquivalences,omitempty"`
}

// MappedProperty writes literals of the listed property IRIs under an
// additional property name
type MappedProperty struct {
	Name       string   `yaml:"name"`
	Properties []string `yaml:"properties"`
}

// PostprocessConfig configures the passes that run after translation
type PostprocessConfig struct {
	// Workers sizes the category pools (0 = GOMAXPROCS)
	Workers     int `yaml:"workers"`
	ChunkSize   int `yaml:"chunkSize"`
	CommitEvery int `yaml:"commitEvery"`
	// MaterializeExistentials adds shortcut edges for someValuesFrom restrictions
	MaterializeExistentials bool `yaml:"materializeExistentials"`
}

// NATSConfig configures load event publishing
type NATSConfig struct {
	// URL is the NATS server URL (empty = no publishing)
	URL string `yaml:"url"`
	// Subject receives one message per completed load
	Subject string `yaml:"subject"`
}

// Engine and identity names accepted by Validate.
var (
	engines    = []string{"batch", "transactional"}
	identities = []string{"memory", "disk"}
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			Location:              "graph.db",
			Engine:                "batch",
			Identity:              "memory",
			SpillThreshold:        1_000_000,
			IndexedNodeProperties: []string{"label"},
			ExactNodeProperties:   []string{"iri", "fragment", "curie"},
		},
		Postprocess: PostprocessConfig{
			ChunkSize:               1000,
			CommitEvery:             100_000,
			MaterializeExistentials: true,
		},
		NATS: NATSConfig{
			URL:     "",
			Subject: "owlgraph.load.completed",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Graph.Location == "" {
		return fmt.Errorf("graph.location is required")
	}
	if !slices.Contains(engines, c.Graph.Engine) {
		return fmt.Errorf("graph.engine must be one of %v, got %q", engines, c.Graph.Engine)
	}
	if !slices.Contains(identities, c.Graph.Identity) {
		return fmt.Errorf("graph.identity must be one of %v, got %q", identities, c.Graph.Identity)
	}
	if c.Graph.Identity == "disk" && c.Graph.SpillThreshold <= 0 {
		return fmt.Errorf("graph.spillThreshold must be positive for disk identity")
	}
	for i, o := range c.Ontologies {
		if o.Path == "" {
			return fmt.Errorf("ontologies[%d].path is required", i)
		}
	}
	for i, m := range c.MappedProperties {
		if m.Name == "" {
			return fmt.Errorf("mappedProperties[%d].name is required", i)
		}
		if len(m.Properties) == 0 {
			return fmt.Errorf("mappedProperties[%d].properties must not be empty", i)
		}
	}
	for root, name := range c.Categories {
		if name == "" {
			return fmt.Errorf("categories[%s] must name a category", root)
		}
	}
	if c.Postprocess.Workers < 0 {
		return fmt.Errorf("postprocess.workers must not be negative")
	}
	if c.Postprocess.ChunkSize <= 0 {
		return fmt.Errorf("postprocess.chunkSize must be positive")
	}
	if c.Postprocess.CommitEvery <= 0 {
		return fmt.Errorf("postprocess.commitEvery must be positive")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}

// Mapped returns the mapped properties keyed by alias name.
func (c *Config) Mapped() map[string][]string {
	out := make(map[string][]string, len(c.MappedProperties))
	for _, m := range c.MappedProperties {
		out[m.Name] = append(out[m.Name], m.Properties...)
	}
	return out
}

// LoadFromFile loads configuration from a YAML file. ${VAR} and
// ${VAR:-default} references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := ssconfig.ExpandEnvWithDefaults(string(data))

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Graph
	if other.Graph.Location != "" {
		c.Graph.Location = other.Graph.Location
	}
	if other.Graph.Engine != "" {
		c.Graph.Engine = other.Graph.Engine
	}
	if other.Graph.Identity != "" {
		c.Graph.Identity = other.Graph.Identity
	}
	if other.Graph.SpillThreshold != 0 {
		c.Graph.SpillThreshold = other.Graph.SpillThreshold
	}
	if len(other.Graph.IndexedNodeProperties) > 0 {
		c.Graph.IndexedNodeProperties = other.Graph.IndexedNodeProperties
	}
	if len(other.Graph.ExactNodeProperties) > 0 {
		c.Graph.ExactNodeProperties = other.Graph.ExactNodeProperties
	}

	// Inputs
	if len(other.Ontologies) > 0 {
		c.Ontologies = other.Ontologies
	}
	if len(other.MappedProperties) > 0 {
		c.MappedProperties = other.MappedProperties
	}
	if len(other.Categories) > 0 {
		c.Categories = mergeMap(c.Categories, other.Categories)
	}
	if len(other.Curies) > 0 {
		c.Curies = mergeMap(c.Curies, other.Curies)
	}

	// Postprocess
	if other.Postprocess.Workers != 0 {
		c.Postprocess.Workers = other.Postprocess.Workers
	}
	if other.Postprocess.ChunkSize != 0 {
		c.Postprocess.ChunkSize = other.Postprocess.ChunkSize
	}
	if other.Postprocess.CommitEvery != 0 {
		c.Postprocess.CommitEvery = other.Postprocess.CommitEvery
	}
	c.Postprocess.MaterializeExistentials = other.Postprocess.MaterializeExistentials

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}

	if other.MetricsFile != "" {
		c.MetricsFile = other.MetricsFile
	}
}

func mergeMap(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
