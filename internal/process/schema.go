package process

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// response schema per action; actions not listed fall back to ack.
var actionSchemas = map[string]string{
	ActionInfo:        "info.schema.json",
	ActionCreateLobby: "create_lobby.schema.json",
	ActionListLobbies: "list_lobbies.schema.json",
	ActionLobbyState:  "lobby_state.schema.json",
}

type schemaSet struct {
	byName map[string]*jsonschema.Schema
}

func loadSchemas() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}
	set := &schemaSet{byName: make(map[string]*jsonschema.Schema, len(entries))}
	for _, e := range entries {
		s, err := compiler.Compile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		set.byName[e.Name()] = s
	}
	return set, nil
}

func (s *schemaSet) validate(action string, v any) error {
	name, ok := actionSchemas[action]
	if !ok {
		name = "ack.schema.json"
	}
	schema := s.byName[name]
	if schema == nil {
		return fmt.Errorf("no schema %s", name)
	}
	return schema.Validate(v)
}
