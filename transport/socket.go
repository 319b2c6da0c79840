// Package transport binds the UDP multicast socket mDNS runs over. It is
// explicitly outside the sans-IO core's boundary: it owns a real socket, may
// block, and is the one place in this module goroutines, mutexes, and
// context cancellation are appropriate.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"

	"github.com/corvidlabs/beacon/internal/errors"
)

// Port is the mDNS UDP port per RFC 6762 §5.
const Port = 5353

// MulticastAddr is the mDNS IPv4 multicast group, "224.0.0.251:5353", per
// RFC 6762 §5.
const MulticastAddr = "224.0.0.251:5353"

const multicastIPv4 = "224.0.0.251"

// SocketError reports a failure from a specific socket operation, wrapping
// the underlying OS error. It's an alias for the engine's shared network
// error type so callers can errors.As against one type regardless of
// whether the failure came from this package or elsewhere in beacon.
type SocketError = errors.NetworkError

// MulticastSocket is a UDP socket bound to the mDNS port and joined to the
// mDNS multicast group on every up, multicast-capable interface.
type MulticastSocket struct {
	conn *ipv4.PacketConn
	dest *net.UDPAddr
}

// NewMulticastSocket binds to 0.0.0.0:5353 with SO_REUSEADDR/SO_REUSEPORT
// (via the platform-specific Control function) so beacon can coexist with
// Avahi, Bonjour, or systemd-resolved already holding the port, then joins
// 224.0.0.251 on every up, multicast-capable interface.
func NewMulticastSocket() (*MulticastSocket, error) {
	lc := net.ListenConfig{Control: platformControl}

	conn, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", Port))
	if err != nil {
		return nil, &SocketError{Operation: "bind", Err: err, Details: fmt.Sprintf("port %d", Port)}
	}

	p := ipv4.NewPacketConn(conn)
	group := net.IPv4(224, 0, 0, 251)

	ifaces, err := net.Interfaces()
	if err != nil {
		_ = conn.Close()
		return nil, &SocketError{Operation: "enumerate interfaces", Err: err}
	}

	joined := 0
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		ifaceCopy := iface
		if err := p.JoinGroup(&ifaceCopy, &net.UDPAddr{IP: group}); err != nil {
			continue
		}
		joined++
	}
	if joined == 0 {
		_ = conn.Close()
		return nil, &SocketError{Operation: "join group", Err: fmt.Errorf("no usable interfaces"), Details: multicastIPv4}
	}

	if err := p.SetMulticastTTL(255); err != nil {
		_ = conn.Close()
		return nil, &SocketError{Operation: "set ttl", Err: err}
	}
	if err := p.SetMulticastLoopback(true); err != nil {
		_ = conn.Close()
		return nil, &SocketError{Operation: "set loopback", Err: err}
	}

	dest, err := net.ResolveUDPAddr("udp4", MulticastAddr)
	if err != nil {
		_ = conn.Close()
		return nil, &SocketError{Operation: "resolve destination", Err: err}
	}

	return &MulticastSocket{conn: p, dest: dest}, nil
}

// Send writes b to the mDNS multicast group, ignoring dst when it is the
// zero value (the common case: beacon never addresses unicast replies).
func (m *MulticastSocket) Send(ctx context.Context, b []byte, dst netip.AddrPort) error {
	select {
	case <-ctx.Done():
		return &SocketError{Operation: "send", Err: ctx.Err()}
	default:
	}

	target := m.dest
	if dst.IsValid() {
		target = net.UDPAddrFromAddrPort(dst)
	}

	n, err := m.conn.WriteTo(b, nil, target)
	if err != nil {
		return &SocketError{Operation: "send", Err: err, Details: fmt.Sprintf("%d bytes to %s", len(b), target)}
	}
	if n != len(b) {
		return &SocketError{Operation: "send", Err: fmt.Errorf("partial write: %d/%d bytes", n, len(b))}
	}
	return nil
}

// Receive blocks until a packet arrives, ctx is canceled, or a read
// deadline set via ctx expires.
func (m *MulticastSocket) Receive(ctx context.Context, buf []byte) (int, netip.AddrPort, error) {
	select {
	case <-ctx.Done():
		return 0, netip.AddrPort{}, &SocketError{Operation: "receive", Err: ctx.Err()}
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := m.conn.SetReadDeadline(deadline); err != nil {
			return 0, netip.AddrPort{}, &SocketError{Operation: "set read deadline", Err: err}
		}
	}

	n, _, src, err := m.conn.ReadFrom(buf)
	if err != nil {
		return 0, netip.AddrPort{}, &SocketError{Operation: "receive", Err: err}
	}

	var addrPort netip.AddrPort
	if udpSrc, ok := src.(*net.UDPAddr); ok {
		if addr, ok := netip.AddrFromSlice(udpSrc.IP.To4()); ok {
			addrPort = netip.AddrPortFrom(addr, uint16(udpSrc.Port))
		}
	}
	return n, addrPort, nil
}

// Close releases the socket.
func (m *MulticastSocket) Close() error {
	if m.conn == nil {
		return nil
	}
	if err := m.conn.Close(); err != nil {
		return &SocketError{Operation: "close", Err: err}
	}
	return nil
}
