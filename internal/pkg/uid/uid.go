// Package uid generates identifiers for events, tokens and correlation ids.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
