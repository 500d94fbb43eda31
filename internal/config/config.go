package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSeed                = 1
	DefaultDurationSec         = 300.0
	DefaultNodes               = 4
	DefaultDiscoveryInterval   = 5.0
	DefaultTrafficInterval     = 2.0
	DefaultTrainingThreshold   = 50
	DefaultLowBatteryThreshold = 20.0
	DefaultBatteryWeight       = 0.4
	DefaultLinkQualityWeight   = 0.3
	DefaultDistanceWeight      = 0.2
	DefaultFairnessWeight      = 0.1
	DefaultFlowsPath           = "flows.csv"
)

// Config holds simulation, controller and node settings.
type Config struct {
	Sim        *SimConfig        `yaml:"sim,omitempty"`
	Controller *ControllerConfig `yaml:"controller,omitempty"`
	Node       *NodeConfig       `yaml:"node,omitempty"`
}

// SimConfig describes one simulation run.
type SimConfig struct {
	Seed         int64   `yaml:"seed"`
	DurationSec  float64 `yaml:"duration_sec"`
	Nodes        int     `yaml:"nodes"`
	FlowsPath    string  `yaml:"flows_path"`
	SnapshotPath string  `yaml:"snapshot_path"`
}

// ControllerConfig tunes the controller's routing decision engine.
type ControllerConfig struct {
	DiscoveryIntervalSec float64 `yaml:"discovery_interval_sec"`
	EnableMLRouting      bool    `yaml:"enable_ml_routing"`
	TrainingThreshold    int     `yaml:"training_threshold"`
	EnergyAwareRouting   bool    `yaml:"energy_aware_routing"`
	LowBatteryThreshold  float64 `yaml:"low_battery_threshold"`
	BatteryWeight        float64 `yaml:"battery_weight"`
	LinkQualityWeight    float64 `yaml:"link_quality_weight"`
	DistanceWeight       float64 `yaml:"distance_weight"`
	FairnessWeight       float64 `yaml:"fairness_weight"`
}

// NodeConfig tunes the per-node processes.
type NodeConfig struct {
	DiscoveryIntervalSec float64 `yaml:"discovery_interval_sec"`
	TrafficIntervalSec   float64 `yaml:"traffic_interval_sec"`
	SendDiscovery        *bool   `yaml:"send_discovery,omitempty"`
	SendTraffic          *bool   `yaml:"send_traffic,omitempty"`
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// Save writes a YAML config file to disk.
func Save(path string, cfg Config) error {
	ApplyDefaults(&cfg)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate performs minimal validation for required fields.
func Validate(cfg Config) error {
	if cfg.Sim == nil {
		return fmt.Errorf("config must contain a sim section")
	}
	if cfg.Sim.Nodes < 1 {
		return fmt.Errorf("sim.nodes must be at least 1")
	}
	if cfg.Sim.DurationSec <= 0 {
		return fmt.Errorf("sim.duration_sec must be positive")
	}
	if cfg.Controller != nil {
		c := cfg.Controller
		if c.TrainingThreshold < 1 {
			return fmt.Errorf("controller.training_threshold must be at least 1")
		}
		if c.DiscoveryIntervalSec <= 0 {
			return fmt.Errorf("controller.discovery_interval_sec must be positive")
		}
		for name, w := range map[string]float64{
			"battery_weight":      c.BatteryWeight,
			"link_quality_weight": c.LinkQualityWeight,
			"distance_weight":     c.DistanceWeight,
			"fairness_weight":     c.FairnessWeight,
		} {
			if w < 0 {
				return fmt.Errorf("controller.%s must not be negative", name)
			}
		}
	}
	if cfg.Node != nil {
		if cfg.Node.DiscoveryIntervalSec <= 0 {
			return fmt.Errorf("node.discovery_interval_sec must be positive")
		}
		if cfg.Node.TrafficIntervalSec <= 0 {
			return fmt.Errorf("node.traffic_interval_sec must be positive")
		}
	}
	return nil
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Sim == nil {
		cfg.Sim = &SimConfig{}
	}
	if cfg.Sim.Seed == 0 {
		cfg.Sim.Seed = DefaultSeed
	}
	if cfg.Sim.DurationSec == 0 {
		cfg.Sim.DurationSec = DefaultDurationSec
	}
	if cfg.Sim.Nodes == 0 {
		cfg.Sim.Nodes = DefaultNodes
	}
	if cfg.Sim.FlowsPath == "" {
		cfg.Sim.FlowsPath = DefaultFlowsPath
	}

	if cfg.Controller == nil {
		cfg.Controller = &ControllerConfig{
			EnableMLRouting:    true,
			EnergyAwareRouting: true,
		}
	}
	if cfg.Controller.DiscoveryIntervalSec == 0 {
		cfg.Controller.DiscoveryIntervalSec = DefaultDiscoveryInterval
	}
	if cfg.Controller.TrainingThreshold == 0 {
		cfg.Controller.TrainingThreshold = DefaultTrainingThreshold
	}
	if cfg.Controller.LowBatteryThreshold == 0 {
		cfg.Controller.LowBatteryThreshold = DefaultLowBatteryThreshold
	}
	if cfg.Controller.BatteryWeight == 0 {
		cfg.Controller.BatteryWeight = DefaultBatteryWeight
	}
	if cfg.Controller.LinkQualityWeight == 0 {
		cfg.Controller.LinkQualityWeight = DefaultLinkQualityWeight
	}
	if cfg.Controller.DistanceWeight == 0 {
		cfg.Controller.DistanceWeight = DefaultDistanceWeight
	}
	if cfg.Controller.FairnessWeight == 0 {
		cfg.Controller.FairnessWeight = DefaultFairnessWeight
	}

	if cfg.Node == nil {
		cfg.Node = &NodeConfig{}
	}
	if cfg.Node.DiscoveryIntervalSec == 0 {
		cfg.Node.DiscoveryIntervalSec = DefaultDiscoveryInterval
	}
	if cfg.Node.TrafficIntervalSec == 0 {
		cfg.Node.TrafficIntervalSec = DefaultTrafficInterval
	}
	if cfg.Node.SendDiscovery == nil {
		v := true
		cfg.Node.SendDiscovery = &v
	}
	if cfg.Node.SendTraffic == nil {
		v := true
		cfg.Node.SendTraffic = &v
	}
}
