// Package config loads econreport settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config
