// Package tides turns NOAA hi/lo predictions into tide events and presents
// them. A Presenter fetches one calendar day of predictions for a fixed
// station, converts them to Events and replaces the contents of a table, a
// chart and a status line. Results of superseded loads are discarded.
package tides
