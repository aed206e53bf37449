package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"tactics-server/internal/engine"
	"tactics-server/pkg/api"
)

// document - одна схема и файл, куда она пишется.
type document struct {
	File        string
	Title       string
	Description string
	Value       any
}

var documents = []document{
	{
		File:        "server_response.schema.json",
		Title:       "Tactics Server Response",
		Description: "Snapshot the server sends after every command and on every movement tick.",
		Value:       new(api.ServerResponse),
	},
	{
		File:        "client_command.schema.json",
		Title:       "Tactics Client Command",
		Description: "Command a client sends over the WebSocket.",
		Value:       new(api.ClientCommand),
	},
	{
		File:        "config.schema.json",
		Title:       "Tactics Server Config",
		Description: "YAML/JSON configuration of the tactics server.",
		Value:       new(engine.Config),
	},
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for _, doc := range documents {
		path := filepath.Join(outDir, doc.File)
		if err := writeSchema(path, buildSchema(doc)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func buildSchema(doc document) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(doc.Value)
	schema.Title = doc.Title
	schema.Description = doc.Description
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
