//go:build !amd64 && !arm64

package hwy

func init() {
	// Non-amd64/arm64 architectures report the scalar level.
	setScalarMode()
}
