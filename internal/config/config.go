package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Input sources understood by the backend factory.
const (
	SourceFile     = "file"
	SourceWorkbook = "workbook"
	SourceSheets   = "sheets"
	SourceMemory   = "memory"
)

type Config struct {
	// Input
	InputSource    string `validate:"oneof=file workbook sheets memory"`
	InputPath      string
	InputDelimiter string

	// Validation band
	MinAge int `validate:"gte=0"`
	MaxAge int `validate:"gtefield=MinAge"`

	// Output
	OutputDir     string `validate:"required"`
	WriteWorkbook bool
	RenderReport  bool

	// Database (empty disables run persistence)
	SQLiteDBPath string

	// AMQP (empty URL disables run events)
	AMQPURL        string
	AMQPExchange   string
	AMQPQueue      string
	PublishTimeout time.Duration

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string
	GoogleRunsSheetName string

	LogLevel string `validate:"oneof=debug info warn warning error"`
}

func Load() *Config {
	cfg := &Config{
		InputSource:    strings.ToLower(getEnv("INPUT_SOURCE", SourceFile)),
		InputPath:      getEnv("INPUT_PATH", "./data/encuesta.csv"),
		InputDelimiter: getEnv("INPUT_DELIMITER", ";"),

		MinAge: getEnvInt("MIN_AGE", 18),
		MaxAge: getEnvInt("MAX_AGE", 25),

		OutputDir:     getEnv("OUTPUT_DIR", "./data/resultados"),
		WriteWorkbook: getEnvBool("WRITE_WORKBOOK", true),
		RenderReport:  getEnvBool("RENDER_REPORT", true),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "finzen"),
		AMQPQueue:      getEnv("AMQP_QUEUE", "pipeline_runs"),
		PublishTimeout: getEnvDuration("PUBLISH_TIMEOUT", 5*time.Second),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Responses"),
		GoogleRunsSheetName: getEnv("GOOGLE_RUNS_SHEET_NAME", "Runs"),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	return cfg
}

// Delimiter returns the input delimiter as a rune; "\t" and "tab" mean a tab.
func (c *Config) Delimiter() rune {
	switch c.InputDelimiter {
	case `\t`, "tab":
		return '\t'
	}
	r := []rune(c.InputDelimiter)
	if len(r) != 1 {
		return ';'
	}
	return r[0]
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errors = append(errors, fmt.Sprintf("invalid %s '%v': failed '%s' rule", fe.Field(), fe.Value(), fe.Tag()))
			}
		} else {
			errors = append(errors, err.Error())
		}
	}

	// Validate input
	switch c.InputSource {
	case SourceFile, SourceWorkbook, SourceMemory:
		if strings.TrimSpace(c.InputPath) == "" {
			errors = append(errors, fmt.Sprintf("input path cannot be empty when using %s source", c.InputSource))
		}
	case SourceSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets source")
		}
	}

	if c.InputSource == SourceFile {
		if r := []rune(c.InputDelimiter); len(r) != 1 && c.InputDelimiter != `\t` && c.InputDelimiter != "tab" {
			errors = append(errors, fmt.Sprintf("invalid input delimiter '%s': must be a single character", c.InputDelimiter))
		} else if c.InputDelimiter == `"` || c.InputDelimiter == "\n" || c.InputDelimiter == "\r" {
			errors = append(errors, fmt.Sprintf("invalid input delimiter %q", c.InputDelimiter))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.PublishTimeout < 100*time.Millisecond {
			errors = append(errors, fmt.Sprintf("invalid publish timeout %v: must be at least 100ms", c.PublishTimeout))
		} else if c.PublishTimeout > time.Minute {
			errors = append(errors, fmt.Sprintf("invalid publish timeout %v: must be at most 1 minute", c.PublishTimeout))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
