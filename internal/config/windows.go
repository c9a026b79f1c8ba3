package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed windows.yaml
var packagedWindows []byte

var validate = validator.New()

// WindowConfig describes one window the host can construct.
type WindowConfig struct {
	Label     string  `yaml:"label" validate:"required"`
	Title     string  `yaml:"title"`
	View      string  `yaml:"view" validate:"required"`
	Width     float32 `yaml:"width" validate:"gte=0"`
	Height    float32 `yaml:"height" validate:"gte=0"`
	Center    bool    `yaml:"center"`
	FixedSize bool    `yaml:"fixed_size"`
	Padded    bool    `yaml:"padded"`
	Master    bool    `yaml:"master"`
	Visible   bool    `yaml:"visible"`
}

// UnmarshalYAML applies the defaults for padded and visible before decoding.
func (w *WindowConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain WindowConfig
	raw := plain{Padded: true, Visible: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*w = WindowConfig(raw)
	return nil
}

type windowsFile struct {
	Windows []WindowConfig `yaml:"windows"`
}

// PackagedWindows returns the window list shipped with the binary.
func PackagedWindows() ([]WindowConfig, error) {
	return ParseWindows(packagedWindows)
}

// LoadWindows reads the window list from path, or the packaged list when path is empty.
func LoadWindows(path string) ([]WindowConfig, error) {
	if strings.TrimSpace(path) == "" {
		return PackagedWindows()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read windows file %s", path)
	}
	return ParseWindows(data)
}

func ParseWindows(data []byte) ([]WindowConfig, error) {
	var file windowsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode windows")
	}
	if err := validateWindows(file.Windows); err != nil {
		return nil, err
	}
	return file.Windows, nil
}

func validateWindows(windows []WindowConfig) error {
	seen := make(map[string]int, len(windows))
	for i, w := range windows {
		if err := validate.Struct(w); err != nil {
			return errors.Wrapf(err, "window %d", i)
		}
		if prev, ok := seen[w.Label]; ok {
			return errors.Errorf("window %d: label %q already used by window %d", i, w.Label, prev)
		}
		seen[w.Label] = i
	}
	return nil
}
