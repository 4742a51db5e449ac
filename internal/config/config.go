// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Convert ConvertConfig `yaml:"convert"`
	Preview PreviewConfig `yaml:"preview"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds the asset locations a conversion run works with.
type PathsConfig struct {
	MaterialLib string `yaml:"material_lib"` // YAML material library
	TextureDir  string `yaml:"texture_dir"`  // directory probed for referenced textures
	OutputDir   string `yaml:"output_dir"`   // where converted assets land
}

// ConvertConfig holds mesh conversion settings.
type ConvertConfig struct {
	ProxyRatio float64 `yaml:"proxy_ratio"` // collision proxy triangle ratio, 0 disables
}

// PreviewConfig holds thumbnail rendering settings.
type PreviewConfig struct {
	Size        int    `yaml:"size"`        // output edge length in pixels
	Supersample int    `yaml:"supersample"` // render at size*n, then downscale
	Format      string `yaml:"format"`      // png or webp
}

// BatchConfig holds batch run settings.
type BatchConfig struct {
	Workers int    `yaml:"workers"` // parallel conversions, 0 means one per CPU
	Pattern string `yaml:"pattern"` // base-name glob over supported sources
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			MaterialLib: "",
			TextureDir:  "",
			OutputDir:   ".",
		},
		Convert: ConvertConfig{
			ProxyRatio: 0,
		},
		Preview: PreviewConfig{
			Size:        512,
			Supersample: 2,
			Format:      "png",
		},
		Batch: BatchConfig{
			Workers: 0,
			Pattern: "*",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
