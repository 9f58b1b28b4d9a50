// Package config exposes typed access to the service configuration.
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them to a duration unit.
type TimeConfig interface {
	GetMillisecond(key string) time.Duration
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or malformed keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
//
// Implementations never fail on lookup; a missing key returns the zero value
// for the requested type, so required keys are checked by the caller at wiring
// time.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool retrieves the value as a bool.
	GetBool(key string) bool

	// GetString retrieves the value as a string.
	GetString(key string) string

	// GetBinary retrieves a base64 encoded value as raw bytes; nil when the
	// value is not valid base64.
	GetBinary(key string) []byte

	// GetArray retrieves a value stored as <element1>,<element2>,... with
	// blank elements dropped.
	GetArray(key string) []string

	// GetMap retrieves a value stored as <key1>:<value1>,<key2>:<value2>,...
	GetMap(key string) map[string]string
}
