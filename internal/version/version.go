// Package version contains the safenet version.
package version

// Version is the software version.
const Version = "0.4.0-dev"
