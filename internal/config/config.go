// Package config defines the configuration recognized by the compiler:
// which dialect to target, the join-count and temp-table thresholds that
// drive statement splitting and scratch-table materialization, and the
// label-optimization toggle.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config controls the behavior of a compiler instance. Field names mirror
// the configuration keys of the external interface: "dialect",
// "maxJoinsPerStatement", "tempTableThreshold", "ignoreLabelOptimization".
type Config struct {
	Dialect string `json:"dialect" mapstructure:"dialect"`

	// MaxJoinsPerStatement overrides the dialect default when non-zero.
	MaxJoinsPerStatement int `json:"maxJoinsPerStatement" mapstructure:"max_joins_per_statement"`

	// TempTableThreshold is the minimum IN-list size that triggers
	// scratch-table materialization instead of an inline IN(...) clause.
	TempTableThreshold int `json:"tempTableThreshold" mapstructure:"temp_table_threshold"`

	// IgnoreLabelOptimization disables using label-keyed filters to narrow
	// table enumeration at resolution time.
	IgnoreLabelOptimization bool `json:"ignoreLabelOptimization" mapstructure:"ignore_label_optimization"`
}

// Default returns the configuration used when none is supplied: no join
// override (dialect default applies), a temp-table threshold of 100, and
// label optimization enabled.
func Default() Config {
	return Config{
		TempTableThreshold: 100,
	}
}

// Load reads a JSON-encoded config from the given file, filling in any
// fields the file omits from Default(). A zero-value filename returns the
// defaults unchanged.
func Load(file string) (Config, error) {
	cfg := Default()
	if file == "" {
		return cfg, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return Config{}, fmt.Errorf("could not open config file %q: %w", file, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", file, err)
	}
	return cfg, nil
}
