// Package config defines the configuration model shared by every wsldev
// component.
//
// The [Config] struct is built once per invocation from an optional
// wsldev.yaml file, struct-tag defaults, a .env file and WSLDEV_*
// environment overrides, then handed to each component at construction.
// Nothing in the repository reads paths or names from ambient globals.
package config
