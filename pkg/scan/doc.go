// Package scan finds photo files in a directory tree.
package scan
