/*
Package sched provides the staleness token and the scheduler abstraction
used to run blocking work off the UI event loop.

A Task runs in the background and returns a continuation. Hosts apply the
continuation on their event loop, where the owning component compares the
token captured at submit time with its Sequence and drops stale results.

Schedulers:
  - Inline: synchronous, used by the command line
  - Manual: queued and resolved by the caller, used in tests
  - the terminal UI wraps tasks into bubbletea commands
*/
package sched
