package pipeline

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the on-disk description of a pipeline's stage graph: which
// stages exist, in what order they lower into one another, and fuel and
// max-depth defaults for a run. External drivers populate Pipeline
// directly via AddStage/AddLowering; LoadConfig only decodes the file,
// and nothing in this module, cmd/kirinctl included, builds a Pipeline
// from a Config.
type Config struct {
	Stages []StageConfig `yaml:"stages"`
	Fuel   int           `yaml:"fuel"`
	MaxDepth int         `yaml:"max_depth"`
}

// StageConfig names one stage and the stages it may lower into.
type StageConfig struct {
	Name      string   `yaml:"name"`
	LowersTo  []string `yaml:"lowers_to"`
}

// LoadConfig reads and parses a pipeline configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
