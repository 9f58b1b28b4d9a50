// Package messaging provides a small broker-agnostic API for publishing and
// consuming events.
//
// Business code depends on Publisher and Consumer only. NATS is the production
// driver; Memory delivers in-process and backs tests and single-node setups.
package messaging
