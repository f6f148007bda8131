// Package dispatch holds ActionDispatcher implementations that do not talk to an
// external system: a position-aware guard that filters redundant signals before
// forwarding them, and a dispatcher that only logs.
package dispatch
