// Package poolconfig loads respool.Config field values from a YAML file
// and layers the environment on top. It deliberately does not know how
// to unmarshal a Factory — Create/Destroy/Validate are Go functions, not
// data, so callers always supply a Factory in code and merge it with
// whatever this package decodes.
package poolconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/respool/pkg/respool"
)

// FileConfig is the on-disk shape of a pool's tunables, in milliseconds
// for the duration fields so a YAML/JSON file never has to spell out a
// Go duration literal.
type FileConfig struct {
	Name                 string `yaml:"name"`
	Min                  int    `yaml:"min"`
	Max                  int    `yaml:"max"`
	IdleTimeoutMillis    int64  `yaml:"idle_timeout_millis"`
	ReapIntervalMillis   int64  `yaml:"reap_interval_millis"`
	AcquireTimeoutMillis int64  `yaml:"acquire_timeout_millis"`
	RefreshIdle          bool   `yaml:"refresh_idle"`
	ReturnToHead         bool   `yaml:"return_to_head"`
	Log                  bool   `yaml:"log"`
}

// Load reads path as YAML into a FileConfig, then lets environment
// variables prefixed RESPOOL_ override individual fields via viper,
// giving the environment precedence over the file.
func Load(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read pool config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse pool config %s: %w", path, err)
	}

	v := viper.New()
	v.SetEnvPrefix("RESPOOL")
	v.AutomaticEnv()
	if v.IsSet("MIN") {
		fc.Min = v.GetInt("MIN")
	}
	if v.IsSet("MAX") {
		fc.Max = v.GetInt("MAX")
	}
	if v.IsSet("LOG") {
		fc.Log = v.GetBool("LOG")
	}

	return fc, nil
}

// Apply merges fc into a base Config built from NewConfig, overriding
// only the fields a FileConfig carries. The Factory on base is left
// untouched.
func Apply(base respool.Config, fc FileConfig) respool.Config {
	cfg := base
	if fc.Name != "" {
		cfg.Name = fc.Name
	}
	cfg.Min = fc.Min
	cfg.Max = fc.Max
	if fc.IdleTimeoutMillis > 0 {
		cfg.IdleTimeout = time.Duration(fc.IdleTimeoutMillis) * time.Millisecond
	}
	if fc.ReapIntervalMillis > 0 {
		cfg.ReapInterval = time.Duration(fc.ReapIntervalMillis) * time.Millisecond
	}
	if fc.AcquireTimeoutMillis > 0 {
		cfg.AcquireTimeout = time.Duration(fc.AcquireTimeoutMillis) * time.Millisecond
	}
	cfg.RefreshIdle = fc.RefreshIdle
	cfg.ReturnToHead = fc.ReturnToHead
	cfg.Log = fc.Log
	return cfg
}
