// Package release discovers downloadable release assets, and their
// published digests, on git hosting platforms. Platform clients live
// in subpackages and implement the Source interface.
package release
