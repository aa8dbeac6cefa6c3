// Package noaa implements queries to NOAA to retrieve tide data. Tide data is
// requested per station for a single calendar day (see PredictionQuery). A
// successful query returns the raw high/low predictions in the order NOAA
// sent them; interpreting them is left to the caller. All times are station
// local.
package noaa
