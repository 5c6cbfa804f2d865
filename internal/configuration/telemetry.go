package configuration

type TelemetryConfig struct {
	// path of a CSV file, "-" for stdout, empty to disable
	Csv string `json:"csv" yaml:"csv"`
	// persist telemetry to the database
	Store bool `json:"store" yaml:"store"`
	// only every n-th tick is emitted
	Decimation int `json:"decimation" yaml:"decimation"`
	// number of records buffered before they are written to the database
	FlushSize int `json:"flushSize" yaml:"flushSize"`
}

type SerialConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    string `json:"port" yaml:"port"`
	Baud    int    `json:"baud" yaml:"baud"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}
