//go:build windows

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions sets SO_REUSEADDR. Windows has no SO_REUSEPORT; its
// SO_REUSEADDR already permits multiple binds to the same port.
func setSocketOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("set SO_REUSEADDR: %w", err)
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
