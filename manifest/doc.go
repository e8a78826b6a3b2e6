// Package manifest loads artifact manifests, YAML or JSON lists of
// file names with their expected hex digests, and verifies directory
// contents against them.
package manifest
