// Package gitlab lists GitLab release asset links.
package gitlab
