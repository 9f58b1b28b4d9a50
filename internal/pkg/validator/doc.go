// Package validator checks request and event structs against their
// `validate` tags.
//
// Failures come back as V10ValidationError keyed by snake_case field name so
// the router can return them as-is. The custom tag is `phone`.
package validator
