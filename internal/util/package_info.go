// Package util contains small helpers shared by other packages.
package util
