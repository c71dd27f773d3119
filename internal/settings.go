package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/catalog"
	"github.com/dukerupert/artesania/internal/profile"
)

// Settings are display options for the storefront, loaded from YAML.
//
//	store_name: Rincón Creativo
//	currency: Bs
//	placeholder_image: https://example.com/product.png
//	departments:
//	  - {label: La Paz, value: La Paz}
type Settings struct {
	StoreName        string            `yaml:"store_name"`
	Currency         string            `yaml:"currency"`
	PlaceholderImage string            `yaml:"placeholder_image"`
	DefaultPicture   string            `yaml:"default_picture"`
	PaymentLink      string            `yaml:"payment_link"`
	Departments      []auth.Department `yaml:"departments"`
}

// DefaultSettings returns the settings used when no file is configured.
func DefaultSettings() Settings {
	return Settings{
		StoreName:        "Rincón Creativo",
		Currency:         "Bs",
		PlaceholderImage: catalog.DefaultPlaceholderImage,
		DefaultPicture:   profile.DefaultPicture,
		PaymentLink:      "https://www.binance.com",
		Departments:      slices.Clone(auth.DefaultDepartments),
	}
}

// LoadSettings reads the settings file at path. An empty path yields the
// defaults; keys missing from the file keep their default value.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("open settings %s: %w", path, err)
	}
	defer f.Close()

	return ParseSettings(f)
}

// ParseSettings decodes YAML settings over the defaults.
func ParseSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()

	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	for i, d := range s.Departments {
		if strings.TrimSpace(d.Value) == "" {
			return Settings{}, fmt.Errorf("settings: department %d has no value", i)
		}
		if d.Label == "" {
			s.Departments[i].Label = d.Value
		}
	}
	if len(s.Departments) == 0 {
		s.Departments = slices.Clone(auth.DefaultDepartments)
	}
	if strings.TrimSpace(s.Currency) == "" {
		s.Currency = "Bs"
	}

	return s, nil
}
