package schemavalidation

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"ps2kbd/internal/keymap"
	"ps2kbd/internal/scancode"
)

type schemaCase struct {
	name         string
	schemaPath   string
	instancePath string
}

// TestSchemaValidation checks every layout shipped under keymaps/ against
// the keymap schema, then builds it.
func TestSchemaValidation(t *testing.T) {
	repoRoot := repoRoot(t)
	schemaPath := filepath.Join(repoRoot, "internal", "keymap", "keymap.schema.json")

	files, err := filepath.Glob(filepath.Join(repoRoot, "keymaps", "*"))
	if err != nil {
		t.Fatalf("glob keymaps: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no keymaps shipped")
	}

	var cases []schemaCase
	for _, f := range files {
		cases = append(cases, schemaCase{
			name:         filepath.Base(f),
			schemaPath:   schemaPath,
			instancePath: f,
		})
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validateInstance(t, tc.schemaPath, tc.instancePath)

			km, err := keymap.Load(tc.instancePath)
			if err != nil {
				t.Fatalf("load keymap: %v", err)
			}
			// Shipped layouts all extend the US one.
			if km.Len() < keymap.USQwerty.Len() {
				t.Fatalf("%s has %d keys, want at least %d", km.Name, km.Len(), keymap.USQwerty.Len())
			}
		})
	}
}

func TestDvorakHomeRow(t *testing.T) {
	km, err := keymap.Load(filepath.Join(repoRoot(t), "keymaps", "us-dvorak.toml"))
	if err != nil {
		t.Fatalf("load keymap: %v", err)
	}

	want := "aoeuidhtns"
	for i := 0; i < len(want); i++ {
		set, ok := km.Lookup(scancode.KeyA + scancode.KeyIndex(i))
		if !ok {
			t.Fatalf("key 0x%02x missing", uint8(scancode.KeyA)+uint8(i))
		}
		if got := set.Plain; got != keymap.Lower(want[i]) {
			t.Errorf("key 0x%02x plain = %v, want lower:%c", uint8(scancode.KeyA)+uint8(i), got, want[i])
		}
	}
}

func TestSchemaRejectsBadDocument(t *testing.T) {
	bad := []byte(`{"name": "broken", "keys": {"a": {"plain": "x"}}}`)
	if err := keymap.Validate(bad, keymap.FormatJSON); err == nil {
		t.Fatal("expected schema error for non-hex key")
	}
}

func validateInstance(t *testing.T, schemaPath, instancePath string) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	instanceData, err := os.ReadFile(instancePath)
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}

	instance := decodeInstance(t, instancePath, instanceData)

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, bytes.NewReader(schemaData)); err != nil {
		t.Fatalf("add schema resource: %v", err)
	}
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	if err := schema.Validate(instance); err != nil {
		t.Fatalf("schema validation failed for %s: %v", filepath.Base(instancePath), err)
	}
}

// decodeInstance reads TOML, YAML or JSON into plain JSON values.
func decodeInstance(t *testing.T, path string, data []byte) any {
	t.Helper()

	var raw any
	switch keymap.FormatFromPath(path) {
	case keymap.FormatYAML:
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("unmarshal YAML: %v", err)
		}
		raw = m
	case keymap.FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			t.Fatalf("unmarshal TOML: %v", err)
		}
		raw = m
	default:
		raw = json.RawMessage(data)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("normalize instance: %v", err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		t.Fatalf("unmarshal instance: %v", err)
	}
	return instance
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
