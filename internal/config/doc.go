// Package config loads the process configuration: built-in defaults, an
// optional searchgpt.{yaml,json,toml} file, a .env file and the environment,
// in increasing order of precedence.
package config
