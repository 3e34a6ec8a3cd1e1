// Package ui renders engine plans, progress and stack outputs for the
// terminal. Printer writes plain lines and colors them only when the
// destination is a terminal; RunProgress drives a Bubble Tea view for
// interactive runs.
package ui
