// Package config reads application settings by dotted key
// (e.g. "database.pool.max_conns").
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values as durations in the named unit.
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or unparsable values yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of
// various types. Implementations return the zero value when a key is absent.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool retrieves the value associated with key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value associated with key as a string.
	GetString(key string) string

	// GetBinary retrieves a base64 encoded value as raw bytes. Invalid base64
	// yields nil.
	GetBinary(key string) []byte

	// GetArray retrieves a list value. Both YAML sequences and comma separated
	// strings (<element1>,<element2>,...) are accepted; elements are trimmed
	// and empty elements dropped.
	GetArray(key string) []string

	// GetMap retrieves a map value stored as <key1>:<value1>,<key2>:<value2>.
	GetMap(key string) map[string]string

	// IsSet reports whether key has a value in any source.
	IsSet(key string) bool
}
