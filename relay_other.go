//go:build !linux

package main

import (
	"errors"
	"net"
)

const spliceSupported = false

func bounceSplice(net.Conn, net.Conn) (int64, error) {
	return 0, errors.New("splice is only available on linux")
}
