package keymap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"ps2kbd/internal/scancode"
)

// Format is a keymap document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension, defaulting to TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Document is the on-disk form of a layout. Each entry in Keys replaces the
// whole layer set of that key in the base layout; omitted slots are Unmapped.
type Document struct {
	Name string              `toml:"name" json:"name" yaml:"name"`
	Base string              `toml:"base,omitempty" json:"base,omitempty" yaml:"base,omitempty"`
	Keys map[string]LayerDoc `toml:"keys" json:"keys" yaml:"keys"`
}

// LayerDoc holds the six slots in ParseValue notation.
type LayerDoc struct {
	Plain    string `toml:"plain,omitempty" json:"plain,omitempty" yaml:"plain,omitempty"`
	Shift    string `toml:"shift,omitempty" json:"shift,omitempty" yaml:"shift,omitempty"`
	Control  string `toml:"control,omitempty" json:"control,omitempty" yaml:"control,omitempty"`
	Alt      string `toml:"alt,omitempty" json:"alt,omitempty" yaml:"alt,omitempty"`
	AltGr    string `toml:"altgr,omitempty" json:"altgr,omitempty" yaml:"altgr,omitempty"`
	AltShift string `toml:"alt_shift,omitempty" json:"alt_shift,omitempty" yaml:"alt_shift,omitempty"`
}

// Errors returned while loading layouts.
var (
	ErrSchema      = errors.New("keymap document does not match schema")
	ErrUnknownBase = errors.New("unknown base keymap")
	ErrKeyIndex    = errors.New("invalid key index")
)

//go:embed keymap.schema.json
var schemaJSON []byte

const schemaURL = "keymap-v1.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Builtin returns a copy of a compiled-in layout by name.
func Builtin(name string) (*Keymap, bool) {
	switch strings.ToLower(name) {
	case "us", "us-qwerty":
		return USQwerty.Clone(USQwerty.Name), true
	}
	return nil, false
}

// Load reads, validates and builds a layout from a file. The path "builtin:us"
// selects a compiled-in layout.
func Load(path string) (*Keymap, error) {
	if name, ok := strings.CutPrefix(path, "builtin:"); ok {
		km, found := Builtin(name)
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBase, name)
		}
		return km, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap file: %w", err)
	}
	km, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

// Parse validates data against the keymap schema and builds the layout.
func Parse(data []byte, format Format) (*Keymap, error) {
	if err := Validate(data, format); err != nil {
		return nil, err
	}

	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return doc.Build()
}

// Validate checks a document against the embedded JSON schema.
func Validate(data []byte, format Format) error {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	default:
		m := map[string]any{}
		if _, err := toml.Decode(string(data), &m); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
		raw = m
	}

	// The validator wants plain JSON types.
	normalized, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}

	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// stringKeys converts YAML's map[any]any into map[string]any.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = stringKeys(t[i])
		}
		return t
	default:
		return v
	}
}

// Build turns the document into a layout.
func (d *Document) Build() (*Keymap, error) {
	var km *Keymap
	if d.Base != "" {
		base, ok := Builtin(d.Base)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBase, d.Base)
		}
		km = base.Clone(d.Name)
	} else {
		km = New(d.Name)
	}

	for key, layers := range d.Keys {
		idx, err := parseKeyIndex(key)
		if err != nil {
			return nil, err
		}
		set, err := layers.build()
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		km.Set(idx, set)
	}
	return km, nil
}

func (l LayerDoc) build() (*LayerSet, error) {
	set := &LayerSet{}
	slots := []struct {
		layer Layer
		text  string
	}{
		{LayerPlain, l.Plain},
		{LayerShift, l.Shift},
		{LayerControl, l.Control},
		{LayerAlt, l.Alt},
		{LayerAltGr, l.AltGr},
		{LayerAltShift, l.AltShift},
	}
	for _, slot := range slots {
		v, err := ParseValue(slot.text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot.layer, err)
		}
		set.set(slot.layer, v)
	}
	return set, nil
}

func parseKeyIndex(s string) (scancode.KeyIndex, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrKeyIndex, s)
	}
	return scancode.KeyIndex(n), nil
}

// Document converts a layout back into its on-disk form.
func (k *Keymap) Document() *Document {
	doc := &Document{Name: k.Name, Keys: make(map[string]LayerDoc, k.Len())}
	k.Each(func(idx scancode.KeyIndex, s *LayerSet) {
		doc.Keys[fmt.Sprintf("0x%02x", uint8(idx))] = LayerDoc{
			Plain:    s.Plain.String(),
			Shift:    s.Shift.String(),
			Control:  s.Control.String(),
			Alt:      s.Alt.String(),
			AltGr:    s.AltGr.String(),
			AltShift: s.AltShift.String(),
		}
	})
	return doc
}

// Encode writes the layout in the given format.
func (k *Keymap) Encode(format Format) ([]byte, error) {
	doc := k.Document()
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode TOML: %w", err)
		}
		return buf.Bytes(), nil
	}
}
