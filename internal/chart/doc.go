/*
Package chart mounts analysis charts on a drawing surface.

# Payloads

Parse accepts three shapes of JSON chart description:
  - a single {data, layout} figure
  - a list of figures whose first layout carries updatemenus; a toggle
    control cycles between them
  - a list of named series merged into one figure, with menu buttons that
    set a per-trace visibility mask

# Rendering

Renderer owns one chart slot. Plot replaces whatever is mounted and keeps
exactly one window resize listener; Resize sizes the chart to the panel
width and max(300, 0.6 × viewport height). Restyle changes marker colours
only.

SchemeControl restyles by trace name from a SchemeTable. Export writes the
drawn figure as PNG or SVG.
*/
package chart
