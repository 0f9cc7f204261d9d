// Package view turns analysis results into display blocks and drives the
// result and chart panels through the Target and Plotter interfaces.
package view
