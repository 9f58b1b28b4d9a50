// Package jwt issues and verifies the access tokens handed out after a
// successful passcode verification.
//
// The subject of every token is the verified contact (phone number or email);
// there is no user record behind it.
package jwt
