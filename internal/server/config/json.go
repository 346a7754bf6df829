package config

import (
	"encoding/json"
	"os"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/flagx"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. ShutdownTimeout uses
// timex.Duration so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	MaxRequestBytes  int64          `json:"max_request_bytes"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	LogLevel         string         `json:"log_level"`
	LogFile          string         `json:"log_file"`
	LogMaxSizeMB     int            `json:"log_max_size_mb"`
	LogMaxBackups    int            `json:"log_max_backups"`
	LogMaxAgeDays    int            `json:"log_max_age_days"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Keys absent from the file keep their current value. An unreadable or
// malformed file panics, since the server cannot start on a half-read config.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := JsonConfig{
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		EndpointAddrGRPC: config.EndpointAddrGRPC,
		DatabaseDSN:      config.DatabaseDSN,
		SecretKey:        config.SecretKey,
		MaxRequestBytes:  config.MaxRequestBytes,
		ShutdownTimeout:  timex.Duration{Duration: config.ShutdownTimeout},
		LogLevel:         config.LogLevel,
		LogFile:          config.LogFile,
		LogMaxSizeMB:     config.LogMaxSizeMB,
		LogMaxBackups:    config.LogMaxBackups,
		LogMaxAgeDays:    config.LogMaxAgeDays,
	}
	if err := json.Unmarshal(file, &c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.MaxRequestBytes = c.MaxRequestBytes
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
	config.LogLevel = c.LogLevel
	config.LogFile = c.LogFile
	config.LogMaxSizeMB = c.LogMaxSizeMB
	config.LogMaxBackups = c.LogMaxBackups
	config.LogMaxAgeDays = c.LogMaxAgeDays
}
