/*
Package tui implements the terminal user interface.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern. Update is the
single event loop of the client: the analysis controller, the history
pager and the chart renderer are only ever called from it.

Background work goes through teaScheduler. A scheduled task becomes a
tea.Cmd, Bubble Tea runs it off the loop, and its continuation comes back
as an applyMsg that Update executes. Staleness checks therefore run on the
loop, with no locking.

# Panels

  - input: the query, with suggestions cycled by ctrl+n
  - history: one page of past queries with prev/next controls
  - result: the rendered blocks (glamour markdown) and the chart

The chart is drawn as text by chartPane, which implements chart.Surface.
termWindow implements chart.Window: a WindowSizeMsg notifies the single
resize listener of the mounted chart.

# Session

With a session.Manager in Options, the last query and colour scheme are
restored at start and saved again by Cleanup.

# Keys

Keys resolve through the keybinds registry for the focused panel, see
package keybinds for the contexts and defaults.
*/
package tui
