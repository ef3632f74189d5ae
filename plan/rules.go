package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules loads the engine configuration from a YAML file. Missing knobs
// take their stock defaults; per-room rules are validated so a bad file
// fails at load time rather than mid-pipeline.
func LoadRules(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("rules file not found: %s", path)
		}
		return Config{}, fmt.Errorf("reading rules file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing rules YAML: %w", err)
	}

	for label, rule := range cfg.PerRoomType {
		if rule.SocketPerWallMeter < 0 {
			return Config{}, fmt.Errorf("perRoomType.%s.socketPerWallMeter must be >= 0", label)
		}
		if rule.MinSwitches < 0 {
			return Config{}, fmt.Errorf("perRoomType.%s.minSwitches must be >= 0", label)
		}
		if rule.SocketMax < 0 {
			return Config{}, fmt.Errorf("perRoomType.%s.socketMax must be >= 0", label)
		}
		// A rule with no density keeps the stock density so candidate
		// spacing stays finite.
		if rule.SocketPerWallMeter == 0 {
			rule.SocketPerWallMeter = defaultRoomRule.SocketPerWallMeter
		}
		if rule.SocketMax == 0 {
			rule.SocketMax = defaultRoomRule.SocketMax
		}
		cfg.PerRoomType[label] = rule
	}
	if cfg.PerRoomType == nil {
		cfg.PerRoomType = map[string]RoomRule{"LIVING": defaultRoomRule}
	}

	for i, step := range cfg.Router.Ladder {
		if step.Downsample < 1 {
			return Config{}, fmt.Errorf("router.ladder[%d].downsample must be >= 1", i)
		}
		if step.Dilate < 0 {
			return Config{}, fmt.Errorf("router.ladder[%d].dilate must be >= 0", i)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// SaveRules writes the configuration back to a YAML file.
func SaveRules(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling rules YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing rules file: %w", err)
	}
	return nil
}
