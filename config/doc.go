// Package config loads botcoder settings and sets up logging.
//
// Settings come from three layers, later layers winning:
//
//  1. Default values
//  2. An optional file (YAML, TOML or JSON, chosen by extension)
//  3. Environment variables, optionally seeded from .env files
//
// Environment variables use the BOTCODER_ prefix. The variable names of the
// original command line tool are accepted as aliases:
//
//	LLM_URL           base_url
//	LLM_KEY           api_key
//	LLM_MODEL         model
//	LLM_TPM           max_tokens_per_minute
//	LLM_MIN_INTERVAL  min_interval, in whole seconds
//	PROJECT_PATH      project_path
//
// A Watcher re-reads the file when it changes so rate limits can be tuned
// while a session runs.
package config
