package config

// FileConfig is the YAML file schema. Scalars that need presence detection
// are pointers; durations are strings in Go duration syntax (e.g. "15m").
type FileConfig struct {
	Listen       string `yaml:"listen,omitempty"`
	DataDir      string `yaml:"dataDir,omitempty"`
	LogLevel     string `yaml:"logLevel,omitempty"`
	MaxDeckBytes *int64 `yaml:"maxDeckBytes,omitempty"`
	RateLimit    *int   `yaml:"rateLimit,omitempty"`
	RateInterval string `yaml:"rateInterval,omitempty"`

	Cache     *CacheFileConfig     `yaml:"cache,omitempty"`
	Store     *StoreFileConfig     `yaml:"store,omitempty"`
	Watch     *WatchFileConfig     `yaml:"watch,omitempty"`
	Telemetry *TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// CacheFileConfig mirrors CacheConfig in the file schema.
type CacheFileConfig struct {
	Backend    string `yaml:"backend,omitempty"`
	RedisAddr  string `yaml:"redisAddr,omitempty"`
	TTL        string `yaml:"ttl,omitempty"`
	MaxEntries *int   `yaml:"maxEntries,omitempty"`
}

// StoreFileConfig mirrors StoreConfig in the file schema.
type StoreFileConfig struct {
	Path       string `yaml:"path,omitempty"`
	MaxReports *int   `yaml:"maxReports,omitempty"`
}

// WatchFileConfig mirrors WatchConfig in the file schema.
type WatchFileConfig struct {
	Dirs         []string `yaml:"dirs,omitempty"`
	Debounce     string   `yaml:"debounce,omitempty"`
	MaxPerSecond *float64 `yaml:"maxPerSecond,omitempty"`
}

// TelemetryFileConfig mirrors TelemetryConfig in the file schema.
type TelemetryFileConfig struct {
	Enabled     *bool    `yaml:"enabled,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"`
	Protocol    string   `yaml:"protocol,omitempty"`
	Insecure    *bool    `yaml:"insecure,omitempty"`
	SampleRatio *float64 `yaml:"sampleRatio,omitempty"`
}

// ExampleFile returns a file config fully populated with the built-in
// defaults. Loading its YAML form yields the same configuration as an
// empty file; configgen uses it to emit a starting point for operators.
func ExampleFile() *FileConfig {
	def := Default()
	return &FileConfig{
		Listen:       def.Listen,
		DataDir:      def.DataDir,
		LogLevel:     def.LogLevel,
		MaxDeckBytes: &def.MaxDeckBytes,
		RateLimit:    &def.RateLimit,
		RateInterval: def.RateInterval.String(),
		Cache: &CacheFileConfig{
			Backend:    def.Cache.Backend,
			TTL:        def.Cache.TTL.String(),
			MaxEntries: &def.Cache.MaxEntries,
		},
		Store: &StoreFileConfig{
			MaxReports: &def.Store.MaxReports,
		},
		Watch: &WatchFileConfig{
			Debounce:     def.Watch.Debounce.String(),
			MaxPerSecond: &def.Watch.MaxPerSecond,
		},
		Telemetry: &TelemetryFileConfig{
			Enabled:     &def.Telemetry.Enabled,
			Protocol:    def.Telemetry.Protocol,
			SampleRatio: &def.Telemetry.SampleRatio,
		},
	}
}
