package config

import (
	"flag"
	"os"
	"time"

	"github.com/echi/timecapsule/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8081")
//	-d string   PostgreSQL DSN
//	-s string   sweep trigger shared secret
//	-l string   public base URL for capsule links
//	-z string   reference time zone name (e.g., "UTC")
//	-w int      sweep parallelism
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   email API endpoint
//	-k string   email API key
//	-f string   email From address
//	-t int      email send timeout, seconds
//
// os.Args is first filtered with flagx.FilterArgs so flags owned by other
// packages (like -c/-config) are not rejected here.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-l", "-z", "-w", "-u", "-p", "-b", "-g", "-e", "-m", "-k", "-f", "-t",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CronSecret, "s", config.CronSecret, "sweep trigger shared secret")
	fs.StringVar(&config.BaseURL, "l", config.BaseURL, "public base URL")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "reference time zone")
	fs.IntVar(&config.SweepParallelism, "w", config.SweepParallelism, "sweep parallelism")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.EmailEndpoint, "m", config.EmailEndpoint, "email API endpoint")
	fs.StringVar(&config.EmailAPIKey, "k", config.EmailAPIKey, "email API key")
	fs.StringVar(&config.EmailFrom, "f", config.EmailFrom, "email From address")

	emailTimeout := fs.Int("t", int(config.EmailTimeout.Seconds()), "email send timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.EmailTimeout = time.Duration(*emailTimeout) * time.Second
}
