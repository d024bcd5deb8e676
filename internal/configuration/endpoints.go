package configuration

// ApiConfig configures the REST api of the daemon
type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// StatisticsConfig configures the prometheus exporter, port 0 selects 9000
type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// ProfilingConfig configures the pprof endpoint, port 0 selects 6060
type ProfilingConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port,omitempty"`
}
