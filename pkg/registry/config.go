package registry

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/schema"
)

// document is the root of the declarative field-configuration file.
type document struct {
	Version      string           `yaml:"version"`
	FeatureFlags map[string]bool  `yaml:"feature_flags"`
	Fields       []map[string]any `yaml:"fields"`
}

// fieldEntry is a single field declaration. Entries are decoded through
// mapstructure so the same shape works for YAML and JSON documents.
type fieldEntry struct {
	Name            string           `mapstructure:"name"`
	FieldType       string           `mapstructure:"field_type"`
	ReducerType     string           `mapstructure:"reducer_type"`
	Group           string           `mapstructure:"group"`
	Required        bool             `mapstructure:"required"`
	DefaultValue    any              `mapstructure:"default_value"`
	Description     string           `mapstructure:"description"`
	ValidationRules []string         `mapstructure:"validation_rules"`
	MemoryPolicy    *RetentionPolicy `mapstructure:"memory_policy"`
	FeatureFlag     string           `mapstructure:"feature_flag"`
	Conflict        string           `mapstructure:"conflict_resolution_strategy"`
	DedupKeys       []string         `mapstructure:"dedup_keys"`
}

var knownStrategies = func() map[string]reducer.Strategy {
	out := make(map[string]reducer.Strategy)
	for _, s := range reducer.Strategies() {
		out[string(s)] = s
	}
	return out
}()

// Load reads a field-configuration document from disk and builds a registry
// from it. The document is loaded once at process start; to apply changes,
// build a new registry and swap it between merges, never mid-merge.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field config: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from the raw YAML document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse field config: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("field config declares no fields")
	}

	descriptors := make([]Descriptor, 0, len(doc.Fields))
	for i, raw := range doc.Fields {
		var entry fieldEntry
		if err := mapstructure.Decode(raw, &entry); err != nil {
			return nil, fmt.Errorf("field entry %d: %w", i, err)
		}

		d, err := entry.descriptor()
		if err != nil {
			return nil, fmt.Errorf("field entry %d (%s): %w", i, entry.Name, err)
		}
		descriptors = append(descriptors, d)
	}

	return New(descriptors, doc.FeatureFlags)
}

func (e fieldEntry) descriptor() (Descriptor, error) {
	if e.Name == "" {
		return Descriptor{}, fmt.Errorf("missing name")
	}

	fieldType, err := schema.ParseType(e.FieldType)
	if err != nil {
		return Descriptor{}, err
	}

	strategy := reducer.LastWriteWins
	if e.ReducerType != "" {
		s, ok := knownStrategies[e.ReducerType]
		if !ok {
			return Descriptor{}, fmt.Errorf("unknown reducer_type %q", e.ReducerType)
		}
		strategy = s
	}

	conflict := reducer.MostRestrictive
	if e.Conflict != "" {
		c, ok := ConflictStrategies[e.Conflict]
		if !ok {
			return Descriptor{}, fmt.Errorf("unknown conflict_resolution_strategy %q", e.Conflict)
		}
		conflict = c
	}

	return Descriptor{
		Name:        e.Name,
		Type:        fieldType,
		Strategy:    strategy,
		Conflict:    conflict,
		Group:       Group(e.Group),
		Required:    e.Required,
		Default:     e.DefaultValue,
		Rules:       e.ValidationRules,
		Retention:   e.MemoryPolicy,
		FeatureFlag: e.FeatureFlag,
		Description: e.Description,
		DedupKeys:   e.DedupKeys,
	}, nil
}
