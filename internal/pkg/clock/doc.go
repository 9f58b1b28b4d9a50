// Package clock provides a tiny time abstraction.
//
// Token expiry and challenge timestamps read time through Clocker, so tests
// can pin or advance time with Fixed instead of sleeping.
package clock
