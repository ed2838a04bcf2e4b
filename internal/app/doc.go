// Package app contains the core application logic. It defines the App
// struct, its configuration, and the lifecycle of the run, decode and compare
// commands, decoupled from the CLI entrypoint.
package app
