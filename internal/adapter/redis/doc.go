// Package redis adapts Redis to the vote collector: chat comments are read from a
// stream, resolved decisions are published on a channel.
package redis
