//go:build linux

package main

import (
	"errors"
	"io"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	spliceSupported = true
	spliceChunk     = 32 * 1024 // stays below the default pipe capacity
)

// bounce between src and dst use zero copy optimization: bytes move
// socket -> kernel pipe -> socket without entering user space.
func bounceSplice(src, dst net.Conn) (int64, error) {
	srcRaw, err := rawConn(src)
	if err != nil {
		return 0, err
	}
	dstRaw, err := rawConn(dst)
	if err != nil {
		return 0, err
	}

	var pipe [2]int
	if err := unix.Pipe2(pipe[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return 0, err
	}
	defer unix.Close(pipe[0])
	defer unix.Close(pipe[1])

	const flags = unix.SPLICE_F_MOVE | unix.SPLICE_F_NONBLOCK
	var total int64
	for {
		var (
			n    int64
			serr error
		)
		if err := srcRaw.Read(func(fd uintptr) bool {
			n, serr = unix.Splice(int(fd), nil, pipe[1], nil, spliceChunk, flags)
			return !errors.Is(serr, unix.EAGAIN)
		}); err != nil {
			return total, err
		}
		if serr != nil {
			return total, serr
		}
		if n == 0 {
			return total, nil
		}

		for n > 0 {
			var m int64
			if err := dstRaw.Write(func(fd uintptr) bool {
				m, serr = unix.Splice(pipe[0], nil, int(fd), nil, int(n), flags)
				return !errors.Is(serr, unix.EAGAIN)
			}); err != nil {
				return total, err
			}
			if serr != nil {
				return total, serr
			}
			if m == 0 {
				return total, io.ErrShortWrite
			}
			n -= m
			total += m
		}
	}
}

func rawConn(conn net.Conn) (syscall.RawConn, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, errors.New("connection does not expose a file descriptor")
	}
	return sc.SyscallConn()
}
