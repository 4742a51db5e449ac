package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMaterials = flag.String("materials", "", "Path to material library YAML")
	flagTextures  = flag.String("textures", "", "Directory probed for textures")
	flagOutput    = flag.String("out", "", "Output directory")
	flagWorkers   = flag.Int("workers", 0, "Parallel conversions (0 = one per CPU)")
	flagProxy     = flag.Float64("proxy", 0, "Collision proxy triangle ratio")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMaterials != "" {
		cfg.Paths.MaterialLib = *flagMaterials
	}
	if *flagTextures != "" {
		cfg.Paths.TextureDir = *flagTextures
	}
	if *flagOutput != "" {
		cfg.Paths.OutputDir = *flagOutput
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagProxy > 0 {
		cfg.Convert.ProxyRatio = *flagProxy
	}
}
