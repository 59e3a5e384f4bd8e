package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const includeDirective = "$include"

// Load resolves path's $include directives and ${VAR}/$VAR environment
// references, folds everything into one document, then decodes and
// validates it.
//
// Grounded on internal/config/loader.go of the teacher, whose
// LoadRaw/loadRawRecursive/mergeMaps recursion resolves the same
// $include + env-expansion contract; narrowed to YAML only (the
// teacher's JSON5 branch has no grounding elsewhere in this spec's
// stack) and restructured around an explicit ancestry slice and an
// iterative merge worklist instead of the teacher's seen-map-plus-
// recursion shape.
func Load(path string) (*Config, error) {
	doc, err := resolveDocument(path, nil)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeRawConfig(doc)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDocument reads path, expands its $include directives depth-first
// and folds the result underneath path's own keys, then returns the
// combined document.
//
// chain is the list of absolute paths already open on this recursion
// branch, used to reject a cycle instead of recursing forever. It is
// never mutated in place: each call appends to a copy before recursing,
// so sibling includes of the same parent don't see each other's
// ancestry, only their common prefix.
func resolveDocument(path string, chain []string) (map[string]any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	for _, visited := range chain {
		if visited == abs {
			return nil, fmt.Errorf("config include cycle: %s -> %s", strings.Join(chain, " -> "), abs)
		}
	}
	branch := append(append([]string{}, chain...), abs)

	contents, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", abs, err)
	}
	doc, err := decodeYAMLDocument(os.ExpandEnv(string(contents)))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", abs, err)
	}

	includePaths, err := takeIncludePaths(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	combined := map[string]any{}
	dir := filepath.Dir(abs)
	for _, inc := range includePaths {
		inc = strings.TrimSpace(inc)
		if inc == "" {
			continue
		}
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(dir, inc)
		}
		included, err := resolveDocument(inc, branch)
		if err != nil {
			return nil, err
		}
		overlay(combined, included)
	}
	overlay(combined, doc)
	return combined, nil
}

// decodeYAMLDocument parses exactly one YAML document from text, erroring
// if a second one follows.
func decodeYAMLDocument(text string) (map[string]any, error) {
	decoder := yaml.NewDecoder(strings.NewReader(text))
	var doc map[string]any
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, err
	}
	var extra struct{}
	if err := decoder.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("expected a single YAML document")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// takeIncludePaths removes and returns doc's $include directive as a list
// of paths, accepting either a single string or a list of strings.
func takeIncludePaths(doc map[string]any) ([]string, error) {
	raw, present := doc[includeDirective]
	if !present {
		return nil, nil
	}
	delete(doc, includeDirective)

	switch entries := raw.(type) {
	case string:
		return []string{entries}, nil
	case []string:
		return entries, nil
	case []any:
		paths := make([]string, len(entries))
		for i, entry := range entries {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("%s entries must be strings, got %T at index %d", includeDirective, entry, i)
			}
			paths[i] = s
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("%s must be a string or a list of strings, got %T", includeDirective, raw)
	}
}

// overlay writes every key of src into dst, recursing into nested maps so
// a nested override only replaces the leaves it names, leaving sibling
// keys from an earlier include untouched. Implemented as an explicit
// worklist of pending (dst, src) pairs rather than direct recursion, so
// config documents of any nesting depth fold in one pass without growing
// the Go call stack.
func overlay(dst, src map[string]any) {
	type pair struct{ dst, src map[string]any }
	pending := []pair{{dst, src}}
	for len(pending) > 0 {
		last := len(pending) - 1
		cur := pending[last]
		pending = pending[:last]

		for key, value := range cur.src {
			nested, valueIsMap := value.(map[string]any)
			if valueIsMap {
				if existing, ok := cur.dst[key].(map[string]any); ok {
					pending = append(pending, pair{existing, nested})
					continue
				}
			}
			cur.dst[key] = value
		}
	}
}

// decodeRawConfig re-serializes doc and decodes it strictly into a
// Config, rejecting any key that isn't a recognized field.
func decodeRawConfig(doc map[string]any) (*Config, error) {
	payload, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-marshal merged config: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(payload))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
