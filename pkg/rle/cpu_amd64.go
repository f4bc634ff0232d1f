//go:build amd64

package rle

import (
	"golang.org/x/sys/cpu"
)

func hasFastWords() bool {
	return cpu.X86.HasPOPCNT && cpu.X86.HasBMI1
}
