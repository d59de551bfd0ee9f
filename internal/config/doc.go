// Package config loads and validates the application configuration.
//
// Configuration comes from two sources, merged in order of precedence:
//
//  1. Environment variables with the AUTOML prefix
//     (AUTOML_SERVER_PORT, AUTOML_PLATFORM_BASE_URL, ...)
//  2. An optional config.yaml file looked up in the working directory
//     and the configs/ directory
//
// Environment variables win over file values. Defaults are declared on
// the struct tags so a bare environment still yields a runnable config.
package config
