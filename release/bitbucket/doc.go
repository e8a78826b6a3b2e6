// Package bitbucket lists Bitbucket Cloud repository downloads via
// the 2.0 REST API.
package bitbucket
