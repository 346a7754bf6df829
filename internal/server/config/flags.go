package config

import (
	"flag"
	"os"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":5000")
//	-g string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-m int        max request body size, bytes
//	-t duration   graceful shutdown timeout (e.g., "10s")
//	-l string     log level (debug|info|warn|error)
//	-f string     log file; empty logs to stdout
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and
// unknown flags never reach this FlagSet.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-m", "-t", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to serve gRPC health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.Int64Var(&config.MaxRequestBytes, "m", config.MaxRequestBytes, "max request body size (bytes)")
	fs.DurationVar(&config.ShutdownTimeout, "t", config.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "f", config.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
