package security

import (
	"net"
)

// SourceFilter validates source IPs before a packet is ever handed to the
// parser. Per RFC 6762 §2, mDNS is link-local scope: a source must be
// link-local (169.254.0.0/16, RFC 3927) or on the same subnet as one of the
// interfaces the socket joined the multicast group on.
//
// beacon's MulticastSocket joins every up, multicast-capable interface
// (unlike the single bound interface this filter was originally written
// against), so SourceFilter caches addresses across all of them rather than
// just one.
type SourceFilter struct {
	ifaceAddrs []net.IPNet // cached addresses across every joined interface
}

// NewSourceFilter builds a filter caching the addresses of ifaces, avoiding
// a syscall per packet on the receive hot path. An interface whose
// addresses can't be read is skipped rather than failing the whole filter.
func NewSourceFilter(ifaces []net.Interface) *SourceFilter {
	var ipnets []net.IPNet
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				ipnets = append(ipnets, *ipnet)
			}
		}
	}
	return &SourceFilter{ifaceAddrs: ipnets}
}

// IsValid reports whether srcIP is an acceptable mDNS source: IPv4
// link-local, or within the subnet of one of the filter's cached
// interfaces. IPv6 is rejected; this filter only covers the IPv4 path
// MulticastSocket speaks today.
func (sf *SourceFilter) IsValid(srcIP net.IP) bool {
	ip4 := srcIP.To4()
	if ip4 == nil {
		return false
	}

	if ip4[0] == 169 && ip4[1] == 254 {
		return true // RFC 3927 link-local
	}

	for _, ipnet := range sf.ifaceAddrs {
		if ipnet.Contains(srcIP) {
			return true
		}
	}

	return false
}
