//go:build linux

// Package ioctl wraps the Linux ioctl system call for the spidev driver.
package ioctl

import (
	"fmt"
	"reflect"
	"syscall"

	"github.com/pkg/errors"
)

// Direction of the data transfer encoded in a request.
type Direction uint8

// Directions, as in <asm-generic/ioctl.h>.
const (
	None Direction = iota
	Write
	Read
)

// Request is an encoded ioctl request number.
type Request uintptr

// Direction returns the transfer direction.
func (r Request) Direction() Direction {
	return Direction(r >> 30 & 0x03)
}

// Size returns the argument size in bytes.
func (r Request) Size() int {
	return int(r >> 16 & 0x3fff)
}

func (r Request) String() string {
	var dir string
	switch r.Direction() {
	case Write:
		dir = "write"
	case Read:
		dir = "read"
	case Read | Write:
		dir = "read/write"
	default:
		dir = "none"
	}
	return fmt.Sprintf("ioctl %s %d bytes %#04x", dir, r.Size(), uintptr(r&0xffff))
}

// Encode a request from its direction, argument size and type/number pair.
func Encode(dir Direction, size uint16, nr uintptr) Request {
	return Request(dir)<<30 | Request(size&0x3fff)<<16 | Request(nr&0xffff)
}

// For encodes a request whose argument is the value ref points to.
func For(dir Direction, ref interface{}, nr uintptr) Request {
	return Encode(dir, uint16(reflect.TypeOf(ref).Elem().Size()), nr)
}

// Do issues request on fd with ptr as the argument.
func Do(fd uintptr, request Request, ptr interface{}) error {
	var arg uintptr
	if ptr != nil {
		arg = reflect.ValueOf(ptr).Pointer()
	}
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(request), arg); errno != 0 {
		return errors.Wrapf(errno, "%s failed", request)
	}
	return nil
}
