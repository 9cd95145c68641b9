package v2

import (
	"github.com/pkg/errors"
)

// requiredKeys lists configuration keys a component cannot start without.
// Components with sensible defaults need no entry.
var requiredKeys = map[string][]string{
	"SaveToExcel":      {"file_path"},
	"SaveToRedis":      {"redis_address"},
	"SaveToPostgreSQL": {"host", "database", "username"},
}

// Validate checks a resolved configuration for unknown component types and
// missing required keys, so misconfiguration fails before anything runs.
func Validate(config *Config) error {
	if config == nil || len(config.Pipelines) == 0 {
		return errors.New("configuration defines no pipelines")
	}

	for name, pipeline := range config.Pipelines {
		if pipeline.Source.Type == "" {
			return errors.Errorf("pipeline %s: missing source type", name)
		}
		if err := validateComponent(ComponentSource, pipeline.Source); err != nil {
			return errors.Wrapf(err, "pipeline %s", name)
		}
		for _, proc := range pipeline.Processors {
			if err := validateComponent(ComponentProcessor, proc); err != nil {
				return errors.Wrapf(err, "pipeline %s", name)
			}
		}
		for _, cons := range pipeline.Consumers {
			if err := validateComponent(ComponentConsumer, cons); err != nil {
				return errors.Wrapf(err, "pipeline %s", name)
			}
		}
	}
	return nil
}

func validateComponent(role ComponentRole, component Component) error {
	known := false
	for _, t := range KnownTypes(role) {
		if t == component.Type {
			known = true
			break
		}
	}
	if !known {
		return errors.Errorf("unknown %s type %q", role, component.Type)
	}

	for _, key := range requiredKeys[component.Type] {
		if _, ok := component.Config[key]; !ok {
			return errors.Errorf("%s %s: missing required config key %q", role, component.Type, key)
		}
	}
	return nil
}
