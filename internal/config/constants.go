package config

import "time"

// Session constants
const (
	// SessionName is the name of the session cookie
	SessionName = "civic-session"

	// SessionMaxAge is the maximum age of a session in seconds (7 days)
	SessionMaxAge = 86400 * 7
)

// Database constants
const (
	// DatabaseMaxOpenConns is the default maximum number of open connections
	DatabaseMaxOpenConns = 25

	// DatabaseMaxIdleConns is the default maximum number of idle connections
	DatabaseMaxIdleConns = 5

	// DatabaseConnMaxLifetime is the default maximum lifetime of a connection
	DatabaseConnMaxLifetime = 5 * time.Minute
)

// Server timeout constants
const (
	// ServerReadTimeout is the maximum duration for reading the entire request
	ServerReadTimeout = 15 * time.Second

	// ServerWriteTimeout is the maximum duration before timing out writes of the response
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum amount of time to wait for the next request
	ServerIdleTimeout = 60 * time.Second

	// ServerShutdownTimeout is the maximum duration to wait for graceful shutdown
	ServerShutdownTimeout = 10 * time.Second
)

// Pagination constants
const (
	// DefaultPageSize is the default number of records returned per page
	DefaultPageSize = 20

	// MaxPageSize is the maximum number of records returned per page
	MaxPageSize = 100
)

// DefaultCSP is the default Content Security Policy applied to all responses
const DefaultCSP = "default-src 'self'; " +
	"script-src 'self'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; " +
	"font-src 'self'; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'"
