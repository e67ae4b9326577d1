// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. A YAML file
//  3. Environment variables (FORKMESH_ prefix)
//  4. An explicit map, typically from command-line flags
//
// Environment names are matched against the target's koanf keys, so
// FORKMESH_REMOTE_MAX_RETRIES sets remote.max_retries even though the key
// itself contains an underscore.
//
// Watcher reports writes to the config file so that hot-reloadable keys
// can be re-read while the server runs.
package confloader
