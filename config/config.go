package config

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Cache       CacheConfig       `yaml:"cache"`
	GeoData     GeoDataConfig     `yaml:"geodata"`
	Loader      LoaderConfig      `yaml:"loader"`
	Tiles       TilesConfig       `yaml:"tiles"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Warmer      WarmerConfig      `yaml:"warmer"`
	LayersFile  string            `yaml:"layers_file"`
	Layers      *LayerCatalog

	OverrideGeoServerURL string `yaml:"override_geoserver_url"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Port int `yaml:"port"`
}

// GetPort returns the configured port or the default
func (c *ServerConfig) GetPort() int {
	if c.Port > 0 {
		return c.Port
	}
	return 8080
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	catalog, err := LoadLayerCatalog(config.LayersFile)
	if err != nil {
		log.Printf("Warning: Error loading layer catalog from %s: %v. Starting with an empty catalog.",
			config.LayersFile, err)
		config.Layers = &LayerCatalog{}
	} else {
		config.Layers = catalog
	}

	if config.OverrideGeoServerURL != "" {
		log.Printf("Config: Using overridden geoserver URL: %s", config.OverrideGeoServerURL)
		for i := range config.Layers.Layers {
			config.Layers.Layers[i].URL = overrideBaseURL(config.Layers.Layers[i].URL, config.OverrideGeoServerURL)
		}
	}

	return &config, nil
}

// overrideBaseURL swaps the scheme and host of rawURL for those of
// override, keeping the original path and query. Used to point the whole
// catalog at a mirror or a test server without editing the catalog file.
func overrideBaseURL(rawURL, override string) string {
	orig, err := url.Parse(rawURL)
	if err != nil {
		return override
	}
	base, err := url.Parse(override)
	if err != nil || base.Host == "" {
		return rawURL
	}
	orig.Scheme = base.Scheme
	orig.Host = base.Host
	return orig.String()
}

// Validate checks every component section of the configuration
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Tiles.Validate(); err != nil {
		return fmt.Errorf("tiles: %w", err)
	}
	if err := c.Warmer.Validate(); err != nil {
		return fmt.Errorf("warmer: %w", err)
	}
	return nil
}
