//go:build darwin

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions sets SO_REUSEADDR and SO_REUSEPORT so beacon can bind
// port 5353 alongside Bonjour (mDNSResponder).
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("set SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return fmt.Errorf("set SO_REUSEPORT: %w", err)
	}
	return nil
}

func platformControl(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	if err := c.Control(func(fd uintptr) { sockoptErr = setSocketOptions(fd) }); err != nil {
		return fmt.Errorf("raw conn control: %w", err)
	}
	return sockoptErr
}
