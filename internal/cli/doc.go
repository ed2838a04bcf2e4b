// Package cli turns command-line arguments into an app.Config using cobra.
// It only parses and validates; running the command is the app's job.
package cli
