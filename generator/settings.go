package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Settings is the file-loadable middle resolution tier. Each entry binds a
// value kind to a registered factory name plus the configuration that
// factory is constructed with on every resolution:
//
//	generators:
//	  token:
//	    use: token
//	    config:
//	      length: 64
//	      pool: hex
//
// Settings carry no behavior of their own until applied to a Registry.
type Settings struct {
	Generators map[string]Binding `yaml:"generators" json:"generators"`
}

// Binding names a registered factory and its construction config.
type Binding struct {
	Use    string `yaml:"use" json:"use"`
	Config Config `yaml:"config" json:"config"`
}

// LoadSettings reads path (.yaml, .yml, or .json) and validates the result.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Settings
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// ParseSettings parses YAML settings from memory and validates the result.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Validate checks structural shape only; whether each Use names a registered
// factory is decided when the settings are applied to a registry. Each
// Binding validates through its own Validate, keyed by kind.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Generators, validation.By(noBlankKinds)),
	)
}

func noBlankKinds(value any) error {
	entries, _ := value.(map[string]Binding)
	for kind := range entries {
		if strings.TrimSpace(kind) == "" {
			return fmt.Errorf("blank generator kind")
		}
	}
	return nil
}

// Validate requires the factory name.
func (b Binding) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Use, validation.Required, validation.Length(1, 64)),
	)
}
