package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/echi/timecapsule/internal/flagx"
	"github.com/echi/timecapsule/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON config
// files. It uses timex.Duration for interval fields, which parses both
// string values such as "15s" and integer nanoseconds. After unmarshalling,
// non-empty fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	CronSecret       string         `json:"cron_secret"`
	BaseURL          string         `json:"base_url"`
	Timezone         string         `json:"timezone"`
	SweepParallelism int            `json:"sweep_parallelism"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	EmailEndpoint    string         `json:"email_endpoint"`
	EmailAPIKey      string         `json:"email_api_key"`
	EmailFrom        string         `json:"email_from"`
	EmailTimeout     timex.Duration `json:"email_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flags. If neither flag is set, nothing is loaded. If the
// file cannot be read or contains invalid JSON, the function panics.
// Absent (zero-valued) fields keep their current values.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfNotEmpty(&config.EndpointAddr, c.EndpointAddr)
	setIfNotEmpty(&config.DatabaseDSN, c.DatabaseDSN)
	setIfNotEmpty(&config.CronSecret, c.CronSecret)
	setIfNotEmpty(&config.BaseURL, c.BaseURL)
	setIfNotEmpty(&config.Timezone, c.Timezone)
	if c.SweepParallelism > 0 {
		config.SweepParallelism = c.SweepParallelism
	}
	setIfNotEmpty(&config.S3RootUser, c.S3RootUser)
	setIfNotEmpty(&config.S3RootPassword, c.S3RootPassword)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIfNotEmpty(&config.EmailEndpoint, c.EmailEndpoint)
	setIfNotEmpty(&config.EmailAPIKey, c.EmailAPIKey)
	setIfNotEmpty(&config.EmailFrom, c.EmailFrom)
	if c.EmailTimeout.Duration > 0 {
		config.EmailTimeout = time.Duration(c.EmailTimeout.Duration)
	}
}

func setIfNotEmpty(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
