// Package mail sends passcode emails.
//
// Callers depend on the Mail interface; SMTP is the only provider and speaks
// plain SMTP with optional STARTTLS and PLAIN auth through net/smtp.
package mail
