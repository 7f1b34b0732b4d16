// Package platformx contains platform specific code
package platformx

// WarnIfNotFullySupported will emit a warning if socket snapshots are not
// implemented on this platform.
func WarnIfNotFullySupported() {
	maybeEmitWarning()
}
