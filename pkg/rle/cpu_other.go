//go:build !amd64 && !arm64

package rle

func hasFastWords() bool {
	return false
}
