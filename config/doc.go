// Package config loads and validates application configuration from a
// yaml file, environment variables, and defaults, in that order of
// precedence. It also converts the validated sections into the option
// structs the circuitbreaker and chunk packages consume.
package config
