//go:build arm64

package rle

import (
	"golang.org/x/sys/cpu"
)

func hasFastWords() bool {
	return cpu.ARM64.HasASIMD
}
