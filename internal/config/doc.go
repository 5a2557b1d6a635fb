// Package config resolves offer desk settings: the HTTP listener, the offers
// backend, the starting dimension table, the listing locale, sessions and the
// rate limiter.
//
// Sources apply in order, each overriding the last: defaults, environment
// variables, the YAML file named by --config, then command-line flags.
package config
