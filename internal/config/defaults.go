package config

const (
	defaultCatalogPath = "~/.local/share/mediasniff/catalog.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultConfigPath  = "~/.config/mediasniff/config.toml"
	projectConfigName  = "mediasniff.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Parse: Parse{
			WebPFeatureScan: true,
		},
		Catalog: Catalog{
			Path: defaultCatalogPath,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
