package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"acss/collect"
	"acss/common"
	"acss/compiler"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	CompilerConfig struct {
		Specificity     common.Specificity `yaml:"specificity"`
		DebugClassNames bool               `yaml:"debug_class_names"`
		RTLSelector     string             `yaml:"rtl_selector" validate:"required"`
	}

	StoreConfig struct {
		Manifest     string              `yaml:"manifest" sanitize:"path_clean" validate:"required,filepath"`
		Usage        string              `yaml:"usage" sanitize:"path_clean" validate:"required,filepath"`
		UsageBackend common.UsageBackend `yaml:"usage_backend"`
	}

	OutputConfig struct {
		HeaderTemplate string `yaml:"header_template"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Compiler  CompilerConfig `yaml:"compiler"`
		Store     StoreConfig    `yaml:"store"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// HeaderTemplateFieldName is expanded when stylesheet is rendered, not when
// configuration is loaded. Must match yaml field name above.
const HeaderTemplateFieldName = "header_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(HeaderTemplateFieldName),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed, so no yaml.Unmarshal here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// CompilerOptions converts configuration into compiler options.
func (conf *CompilerConfig) CompilerOptions() compiler.Options {
	return compiler.Options{
		Specificity:     conf.Specificity,
		RTLSelector:     conf.RTLSelector,
		DebugClassNames: conf.DebugClassNames,
	}
}

// CollectOptions converts configuration into stylesheet rendering options.
func (conf *Config) CollectOptions() collect.Options {
	return collect.Options{
		Specificity: conf.Compiler.Specificity,
		Header:      conf.Output.HeaderTemplate,
	}
}
