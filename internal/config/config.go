// Package config loads the engine's external configuration surface (spec
// §6): where the trace log goes, how many book levels a SNAPSHOT carries,
// how often snapshots fire, and whether tracing runs at all.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Output selects where the trace log is written.
type Output string

const (
	OutputFile Output = "file"
	OutputNone Output = "none"
)

// ErrUnknownOutput is returned when `output` names anything but "file" or
// "none".
var ErrUnknownOutput = errors.New("config: output must be \"file\" or \"none\"")

// Config is the fully resolved, read-only-after-load configuration. Field
// names mirror the keys of spec §6's configuration surface.
type Config struct {
	Output           Output
	Logfile          string
	SnapshotLevels   int
	SnapshotInterval uint64
	Emit             bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("output", string(OutputFile))
	v.SetDefault("logfile", "trace.log")
	v.SetDefault("snapshot.levels", 5)
	v.SetDefault("snapshot.interval", 100)
	v.SetDefault("emit", true)
}

// Load reads configuration from path (if non-empty) plus environment
// variables prefixed MATCHENGINE_, falling back to defaults for anything
// unset. viper is the direct loader for the engine's own configuration
// surface; the teacher has no configuration loading of its own.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("matchengine")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	out := Output(v.GetString("output"))
	if out != OutputFile && out != OutputNone {
		return Config{}, ErrUnknownOutput
	}

	return Config{
		Output:           out,
		Logfile:          v.GetString("logfile"),
		SnapshotLevels:   v.GetInt("snapshot.levels"),
		SnapshotInterval: uint64(v.GetInt64("snapshot.interval")),
		Emit:             v.GetBool("emit"),
	}, nil
}
