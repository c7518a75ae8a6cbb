// Package output renders gymdesk-cli results.
//
// A result is printed as an aligned table (the default), as indented
// JSON, or as YAML. Tables are built from struct fields, using the json
// tag as the column name; a field tagged `table:"wide"` only appears
// with --wide and `table:"-"` never does.
package output
