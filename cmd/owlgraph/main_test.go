package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{"ontology": "http://example.org/anatomy", "prefixes": {"ex": "http://example.org/anatomy#"}}
{"type": "Declaration", "entity": "Class", "iri": "ex:Heart"}
{"type": "Declaration", "entity": "Class", "iri": "ex:Organ"}
{"type": "SubClassOf", "sub": "ex:Heart", "super": "ex:Organ"}
{"type": "AnnotationAssertion", "property": "rdfs:label", "subject": "ex:Heart", "value": "heart"}
`

const configYAML = `graph:
  location: %DIR%/graph.db
ontologies:
  - path: %DIR%/*.jsonl
    reasoner:
      enabled: true
mappedProperties:
  - name: label
    properties: ["http://www.w3.org/2000/01/rdf-schema#label"]
categories:
  "http://example.org/anatomy#Organ": organ
curies:
  ex: "http://example.org/anatomy#"
`

func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "anatomy.jsonl"), []byte(doc), 0644))
	cfg := strings.ReplaceAll(configYAML, "%DIR%", filepath.ToSlash(dir))
	path := filepath.Join(dir, "owlgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadExportSearch(t *testing.T) {
	configPath := setupProject(t)

	out, err := execute(t, "load", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "Category organ: 2 nodes")

	out, err = execute(t, "export", "--config", configPath, "--format", "nt")
	require.NoError(t, err)
	assert.Contains(t, out, "<http://example.org/anatomy#Heart> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/anatomy#Organ> .")

	ttl := filepath.Join(t.TempDir(), "graph.ttl")
	_, err = execute(t, "export", "--config", configPath, "--output", ttl)
	require.NoError(t, err)
	data, err := os.ReadFile(ttl)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ex:Heart\n")

	out, err = execute(t, "search", "--config", configPath, "heart")
	require.NoError(t, err)
	assert.Contains(t, out, "http://example.org/anatomy#Heart")
}

func TestLoadEngineOverride(t *testing.T) {
	configPath := setupProject(t)

	_, err := execute(t, "load", "--config", configPath)
	require.NoError(t, err)

	_, err = execute(t, "load", "--config", configPath)
	require.Error(t, err, "a batch load into a populated store fails")

	_, err = execute(t, "load", "--config", configPath, "--engine", "transactional")
	require.NoError(t, err)

	_, err = execute(t, "load", "--config", configPath, "--engine", "bogus")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "owlgraph version "+Version+" (build: "+BuildTime+")\n", out)
}

func TestInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+filepath.Join(home, ".config", "owlgraph", "config.yaml"))

	out, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}
