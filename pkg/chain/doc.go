// Package chain fetches block explorer records.
//
// [Client] talks to the explorer HTTP API. [Mock] is a deterministic
// in-memory chain, which [NewMockHandler] serves over the same API for
// development.
package chain
