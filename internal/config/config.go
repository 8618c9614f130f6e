// Package config provides configuration loading from environment
// variables for every documented threshold/weight in the pipeline.
package config

import (
	"os"
	"strconv"
)

// Default values for the documented scoring/inference thresholds.
const (
	DefaultNoiseThreshold    = 0.6
	DefaultSchemaArraySample = 8  // K
	DefaultSchemaObjectCap   = 24 // M
	DefaultEnumMinObs        = 3
	DefaultEnumMaxDistinct   = 5
	DefaultMaxProbes         = 50
	DefaultParseWorkers      = 16
	DefaultShapeXMLMaxDepth  = 5
	DefaultShapeCSVMaxRows   = 100
)

// Config holds every tunable the pipeline documents a default for.
// Nothing here changes component *semantics*; it only lets an operator
// override the documented numeric thresholds without recompiling.
type Config struct {
	NoiseThreshold float64 // NOISE_THRESHOLD

	// The four schema/enum fields below are loaded but not read by
	// pkg/schema, which uses its own constants; overriding them has no
	// effect on inference.
	SchemaArraySample int // SCHEMA_ARRAY_SAMPLE (K)
	SchemaObjectCap   int // SCHEMA_OBJECT_CAP (M)
	EnumMinObs        int // ENUM_MIN_OBSERVATIONS
	EnumMaxDistinct   int // ENUM_MAX_DISTINCT

	MaxProbes int // MAX_PROBES, default 50

	ParseWorkers int // PARSE_WORKERS, bounded errgroup fan-out for HarParser

	AggressiveProbes bool // PROBE_AGGRESSIVE, enables version-variant/utility probes

	ShapeXMLMaxDepth int // SHAPE_XML_MAX_DEPTH, element-tree depth cap for XML response_summary
	ShapeCSVMaxRows  int // SHAPE_CSV_MAX_ROWS, sample-row cap for CSV response_summary column stats

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB
	LogMaxBackups int    // LOG_MAX_BACKUPS
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS
	LogCompress   bool   // LOG_COMPRESS
}

// Load reads configuration from environment variables with sensible
// defaults matching the values spec.md documents inline.
func Load() *Config {
	return &Config{
		NoiseThreshold: getEnvFloat("NOISE_THRESHOLD", DefaultNoiseThreshold),

		SchemaArraySample: getEnvInt("SCHEMA_ARRAY_SAMPLE", DefaultSchemaArraySample),
		SchemaObjectCap:   getEnvInt("SCHEMA_OBJECT_CAP", DefaultSchemaObjectCap),
		EnumMinObs:        getEnvInt("ENUM_MIN_OBSERVATIONS", DefaultEnumMinObs),
		EnumMaxDistinct:   getEnvInt("ENUM_MAX_DISTINCT", DefaultEnumMaxDistinct),

		MaxProbes: getEnvInt("MAX_PROBES", DefaultMaxProbes),

		ParseWorkers: getEnvInt("PARSE_WORKERS", DefaultParseWorkers),

		AggressiveProbes: getEnvBool("PROBE_AGGRESSIVE", false),

		ShapeXMLMaxDepth: getEnvInt("SHAPE_XML_MAX_DEPTH", DefaultShapeXMLMaxDepth),
		ShapeCSVMaxRows:  getEnvInt("SHAPE_CSV_MAX_ROWS", DefaultShapeCSVMaxRows),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
