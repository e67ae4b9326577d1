// Package output renders forkmesh-cli results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned tables, reflection-driven for structs and slices
//   - json.go: indented JSON
//   - yaml.go: YAML that keeps JSON field names and order
//
// Table output is meant for people. JSON and YAML are stable for scripts.
package output
