//go:build debug
// +build debug

package cp3d

import "fmt"

func cpAssert(truth bool, msg ...interface{}) {
	if !truth {
		panic(fmt.Sprint("Assertion failed: ", msg))
	}
}
