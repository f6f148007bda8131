// Package vote implements the chat vote collector.
//
// A Poller folds comments from a domain.CommentFeed into a shared Tally through the
// classifier; a DecisionCycle drains the Tally once per round, resolves the majority digit
// into a domain.Action and hands it to a domain.ActionDispatcher. The Collector owns all
// three and exposes start, stop and status.
package vote
