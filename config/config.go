package config

// Config represents the stacforge configuration
type Config struct {
	Batch   BatchConfig   `mapstructure:"batch"`
	Storage StorageConfig `mapstructure:"storage"`
	Output  OutputConfig  `mapstructure:"output"`
}

// BatchConfig configures the batch scheduler
type BatchConfig struct {
	MaxWorkers           int     `mapstructure:"max_workers"`            // Upper bound on pool workers (default: 2x CPUs)
	ConcurrencyPerWorker int     `mapstructure:"concurrency_per_worker"` // Concurrent scene tasks per worker (default: 100)
	TaskTimeoutSeconds   float64 `mapstructure:"task_timeout_seconds"`   // Per-scene timeout (default: 300)
	Strict               bool    `mapstructure:"strict"`                 // Escalate any rule failure to a scene failure
}

// StorageConfig configures remote object storage access.
// Credentials are never read here; the S3 client resolves them from the
// standard AWS environment variables.
type StorageConfig struct {
	S3Endpoint      string  `mapstructure:"s3_endpoint"`        // Endpoint host, e.g. eodata.dataspace.copernicus.eu
	S3Secure        bool    `mapstructure:"s3_secure"`          // Use TLS (default: true)
	RequestsPerSec  float64 `mapstructure:"requests_per_sec"`   // Remote read rate limit shared by all workers (default: 100)
	RequestBurst    int     `mapstructure:"request_burst"`      // Rate limiter burst (default: 20)
	ConnectTimeoutS float64 `mapstructure:"connect_timeout_s"`  // Remote connect timeout (default: 20)
}

// OutputConfig configures the document sink
type OutputConfig struct {
	Pattern   string `mapstructure:"pattern"`    // Out-file pattern; {} is replaced with the item id
	NDJSON    int    `mapstructure:"ndjson"`     // NDJSON batch size; 0 disables NDJSON mode
	Minify    bool   `mapstructure:"minify"`     // Compact JSON output
	Overwrite bool   `mapstructure:"overwrite"`  // Allow overwriting existing output files
	FailLog   string `mapstructure:"fail_log"`   // Failure log path; "off" disables (default: fail.log)
}
