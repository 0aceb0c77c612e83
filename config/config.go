package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings is the process configuration. Flags may override individual
// fields after Load.
type Settings struct {
	// Listen is the inspection server address.
	Listen string `yaml:"listen"`
	// Assets are glTF files merged into the world at startup, in order.
	Assets []string `yaml:"assets"`
	// StatusRing bounds the per-subscriber status backlog.
	StatusRing int `yaml:"status_ring"`
	// PhysicsStep is the fixed integration step in seconds; zero disables
	// stepping.
	PhysicsStep float32 `yaml:"physics_step"`
}

var current = Settings{
	Listen:     ":8000",
	StatusRing: 64,
}

func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &current); err != nil {
		return errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return nil
}

func Current() Settings {
	return current
}

func SetListen(listen string) {
	if listen != "" {
		current.Listen = listen
	}
}

func AddAssets(paths []string) {
	current.Assets = append(current.Assets, paths...)
}
