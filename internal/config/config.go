// Package config loads the per-process tunables spec.md §6's
// "Configuration" paragraph names: object depth, max array items,
// dereference depth, AST depth, eval timeout, and the property-eval
// toggle. Grounded on _examples/Manu343726-cucaracha's cmd/root.go
// initConfig (viper.SetConfigName/AddConfigPath/AutomaticEnv), adapted
// from a global viper.Viper to an instance the caller constructs and
// passes around explicitly.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable spec.md §6 and §4.5/§4.1/§4.3 call out a
// default for. Each field's mapstructure tag is its viper key, in
// snake_case.
type Config struct {
	// ObjectDepth bounds how many container levels Factory.Create expands
	// before stopping (spec.md §4.1's depth budget). Default 5.
	ObjectDepth int `mapstructure:"object_depth"`
	// MaxArrayItems bounds how many elements a snapshot serialises per
	// array (spec.md §6). Default 1000.
	MaxArrayItems int `mapstructure:"max_array_items"`
	// DereferenceDepth bounds the reference-chain walk of spec.md §4.1
	// step 1. Default 10.
	DereferenceDepth int `mapstructure:"dereference_depth"`
	// ExpressionDepth bounds the compiled AST's nesting (spec.md §4.5).
	// Default 25.
	ExpressionDepth int `mapstructure:"expression_depth"`
	// EvalTimeout bounds how long the coordinator waits for a pending
	// eval (spec.md §4.3). Default 60s.
	EvalTimeout time.Duration `mapstructure:"eval_timeout"`
	// PropertyEvalEnabled toggles whether property getters are invoked
	// during materialisation at all, or properties are reported
	// unconditionally as "not evaluated" (spec.md §6).
	PropertyEvalEnabled bool `mapstructure:"property_eval_enabled"`
}

// Defaults returns the configuration spec.md §6 lists as the out-of-the-
// box values, used both as Load's fallback and by callers (e.g. tests)
// that want a ready Config without touching the filesystem.
func Defaults() Config {
	return Config{
		ObjectDepth:         5,
		MaxArrayItems:       1000,
		DereferenceDepth:    10,
		ExpressionDepth:     25,
		EvalTimeout:         60 * time.Second,
		PropertyEvalEnabled: true,
	}
}

// Load reads configFile (if non-empty) plus CLRDBG_-prefixed environment
// variable overrides into a Config seeded from Defaults, mirroring
// cucaracha's initConfig: an explicit config path takes precedence, a
// missing file is not an error (defaults stand), and env vars always
// override file values.
func Load(configFile string) (Config, error) {
	v := viper.New()
	cfg := Defaults()

	v.SetDefault("object_depth", cfg.ObjectDepth)
	v.SetDefault("max_array_items", cfg.MaxArrayItems)
	v.SetDefault("dereference_depth", cfg.DereferenceDepth)
	v.SetDefault("expression_depth", cfg.ExpressionDepth)
	v.SetDefault("eval_timeout", cfg.EvalTimeout)
	v.SetDefault("property_eval_enabled", cfg.PropertyEvalEnabled)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("clrdbg")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CLRDBG")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, fs.ErrNotExist) && configFile != "" {
			return Config{}, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
