/*
Package keybinds provides customizable keyboard binding management for the
terminal UI.

# Contexts

Bindings live in contexts: global, input, result, history, filter, raw
and help. A key is looked up in the focused context first, then in global.
The input context binds modifier keys only so that typing a query is never
captured.

# Configuration File Format

~/.nasa-analyst/keybinds.json maps actions to comma separated keys per
context. Comments and trailing commas are accepted:

	{
	  // vim-style paging
	  "history": {
	    "history_prev": "[,h",
	    "history_next": "],l",
	  },
	  "result": { "next_scheme": "c,s" }
	}

A configured action replaces all default keys of that action in that
context.

# Multi-Key Sequences

"gg" goes to top. The first 'g' is bound to go_to_top_prepare and
Press reports it as Pending until the second key arrives.

# Validation

The validator reports keys given to several actions in one section as
conflicts, and warns about unknown actions, rebound reserved keys,
shadowed global bindings and unreachable sequences.
*/
package keybinds
