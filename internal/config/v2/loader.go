// Package v2 loads pipeline configurations. It accepts two formats: the
// legacy `pipelines:` map where every component is named by its full Go type,
// and a simplified single-pipeline format using short aliases:
//
//	source:
//	  type: csv
//	  matches_path: data/matches.csv
//	process:
//	  - filter
//	  - type: report
//	    top_n: 5
//	sink:
//	  - stdout
//	  - type: sqlite
//	    db_path: reports.sqlite
//
// Components may be bare alias strings or maps carrying inline configuration.
// Aliases are resolved, component defaults applied, and the result validated
// before it reaches the factories.
package v2

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"
)

// Format names reported in LoadResult.
const (
	FormatLegacy = "legacy"
	FormatV2     = "v2"
)

// Component is one source/processor/consumer entry with its resolved type.
type Component struct {
	Type   string
	Config map[string]interface{}
}

// Pipeline is the normalized form both formats reduce to.
type Pipeline struct {
	Source     Component
	Processors []Component
	Consumers  []Component
}

// Config is the fully resolved configuration.
type Config struct {
	Pipelines map[string]Pipeline
}

// LoadResult carries the configuration plus load metadata.
type LoadResult struct {
	Config     *Config
	Format     string
	Warnings   []string
	SourceFile string
}

// Load reads, resolves, and validates a configuration file.
func Load(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return Parse(path, []byte(os.ExpandEnv(string(data))))
}

// Parse resolves configuration bytes. Split from Load for tests.
func Parse(path string, data []byte) (*LoadResult, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing config YAML")
	}
	if len(raw) == 0 {
		return nil, errors.New("empty configuration")
	}

	result := &LoadResult{SourceFile: path}
	if _, ok := raw["pipelines"]; ok {
		result.Format = FormatLegacy
		config, warnings, err := parseLegacy(data)
		if err != nil {
			return nil, err
		}
		result.Config = config
		result.Warnings = warnings
	} else {
		result.Format = FormatV2
		config, warnings, err := parseV2(raw)
		if err != nil {
			return nil, err
		}
		result.Config = config
		result.Warnings = warnings
	}

	if err := Validate(result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

type legacyFile struct {
	Pipelines map[string]legacyPipeline `yaml:"pipelines"`
}

type legacyPipeline struct {
	Source     legacyComponent   `yaml:"source"`
	Processors []legacyComponent `yaml:"processors"`
	Consumers  []legacyComponent `yaml:"consumers"`
}

type legacyComponent struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

// parseLegacy decodes with yaml.v2, the parser the legacy files were written
// against, so their decoding quirks keep working.
func parseLegacy(data []byte) (*Config, []string, error) {
	var file legacyFile
	if err := yamlv2.Unmarshal(data, &file); err != nil {
		return nil, nil, errors.Wrap(err, "parsing legacy config")
	}

	config := &Config{Pipelines: make(map[string]Pipeline, len(file.Pipelines))}
	var warnings []string
	for name, p := range file.Pipelines {
		pipeline := Pipeline{
			Source: resolveComponent(ComponentSource, p.Source.Type, p.Source.Config),
		}
		for _, proc := range p.Processors {
			pipeline.Processors = append(pipeline.Processors, resolveComponent(ComponentProcessor, proc.Type, proc.Config))
		}
		for _, cons := range p.Consumers {
			pipeline.Consumers = append(pipeline.Consumers, resolveComponent(ComponentConsumer, cons.Type, cons.Config))
		}
		if len(pipeline.Consumers) == 0 {
			warnings = append(warnings, fmt.Sprintf("pipeline %s has no consumers", name))
		}
		config.Pipelines[name] = pipeline
	}
	return config, warnings, nil
}

func parseV2(raw map[string]interface{}) (*Config, []string, error) {
	var warnings []string

	sourceEntry, ok := raw["source"]
	if !ok {
		return nil, nil, errors.New("v2 config requires a 'source' section")
	}
	source, err := parseV2Component(ComponentSource, sourceEntry)
	if err != nil {
		return nil, nil, err
	}

	pipeline := Pipeline{Source: source}

	sinkEntries, ok := raw["sink"]
	if !ok {
		return nil, nil, errors.New("v2 config requires a 'sink' section")
	}
	consumers, err := parseV2ComponentList(ComponentConsumer, sinkEntries)
	if err != nil {
		return nil, nil, err
	}
	pipeline.Consumers = consumers

	if entries, ok := raw["process"]; ok {
		components, err := parseV2ComponentList(ComponentProcessor, entries)
		if err != nil {
			return nil, nil, err
		}
		pipeline.Processors = components
	} else if snapshotConsumersOnly(consumers) {
		// The dashboard consumes the dataset snapshot itself; stamp an empty
		// filter and pass it through.
		pipeline.Processors = []Component{resolveComponent(ComponentProcessor, "filter", nil)}
		warnings = append(warnings, "no 'process' section; defaulting to the pass-through filter")
	} else {
		// The common case wants the full report; wire the builder implicitly.
		pipeline.Processors = []Component{resolveComponent(ComponentProcessor, "report", nil)}
		warnings = append(warnings, "no 'process' section; defaulting to the report builder")
	}

	name := "default"
	if n, ok := raw["name"].(string); ok && n != "" {
		name = n
	}

	for key := range raw {
		switch key {
		case "name", "source", "process", "sink":
		default:
			warnings = append(warnings, fmt.Sprintf("ignoring unknown top-level key %q", key))
		}
	}

	return &Config{Pipelines: map[string]Pipeline{name: pipeline}}, warnings, nil
}

// snapshotConsumersOnly reports whether every consumer wants the dataset
// snapshot rather than rendered chart tables.
func snapshotConsumersOnly(consumers []Component) bool {
	if len(consumers) == 0 {
		return false
	}
	for _, c := range consumers {
		if c.Type != "Dashboard" {
			return false
		}
	}
	return true
}

func parseV2ComponentList(role ComponentRole, entries interface{}) ([]Component, error) {
	list, ok := entries.([]interface{})
	if !ok {
		// A single component may be given without list syntax.
		component, err := parseV2Component(role, entries)
		if err != nil {
			return nil, err
		}
		return []Component{component}, nil
	}
	components := make([]Component, 0, len(list))
	for _, entry := range list {
		component, err := parseV2Component(role, entry)
		if err != nil {
			return nil, err
		}
		components = append(components, component)
	}
	return components, nil
}

func parseV2Component(role ComponentRole, entry interface{}) (Component, error) {
	switch v := entry.(type) {
	case string:
		return resolveComponent(role, v, nil), nil
	case map[string]interface{}:
		typeName, _ := v["type"].(string)
		if typeName == "" {
			return Component{}, errors.Errorf("%s component missing 'type'", role)
		}
		config := make(map[string]interface{}, len(v))
		for key, value := range v {
			if key != "type" {
				config[key] = value
			}
		}
		return resolveComponent(role, typeName, config), nil
	default:
		return Component{}, errors.Errorf("invalid %s component entry of type %T", role, entry)
	}
}

// resolveComponent maps aliases to canonical type names and overlays
// component defaults under the user-supplied config.
func resolveComponent(role ComponentRole, typeName string, config map[string]interface{}) Component {
	canonical := ResolveAlias(role, typeName)
	merged := ApplyDefaults(canonical, config)
	return Component{Type: canonical, Config: merged}
}
