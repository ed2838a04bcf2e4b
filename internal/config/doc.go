// Package config defines the format-agnostic model of a sweep file and the
// Loader interface implemented by the format-specific packages.
//
// A Model only carries what the file said. Defaults, flag overrides and
// validation are applied by the app package when it turns a Model into an
// app.Config.
package config
