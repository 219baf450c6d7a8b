//go:build !debug
// +build !debug

package cp3d

func cpAssert(truth bool, msg ...interface{}) {}
