package beacon

import (
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/protocol"
)

// Default TTLs, used unless a ServiceInfo overrides them: 120 seconds for
// the service records (PTR/SRV/TXT) and 120 seconds for the hostname's own
// A record as well.
const (
	DefaultServiceTTL uint32 = protocol.TTLService
	DefaultHostTTL    uint32 = protocol.TTLService
)

// ServiceInfo describes one locally-advertised service instance. It is
// immutable once constructed; every name field is a label.Label rather
// than a raw string so the codec layers never re-validate or re-split it.
type ServiceInfo struct {
	ServiceName  label.Label // e.g. "_ipp._tcp.local"
	InstanceName label.Label // e.g. "My Printer" — joined with ServiceName to form the full instance name
	HostName     label.Label // e.g. "myhost.local"
	IPv4         [4]byte
	Port         uint16
	TXT          [][]byte // metadata entries; nil/empty serializes as the mandatory 0x00 byte

	serviceTTL uint32
	hostTTL    uint32
}

// ServiceOption customizes ServiceInfo construction.
type ServiceOption func(*ServiceInfo)

// WithServiceTTL overrides the TTL used for PTR/SRV/TXT records, per the
// RFC 6762 §10 split recommended for hosts that want shorter-lived service
// records than host records.
func WithServiceTTL(ttl uint32) ServiceOption {
	return func(s *ServiceInfo) { s.serviceTTL = ttl }
}

// WithHostTTL overrides the TTL used for the A record.
func WithHostTTL(ttl uint32) ServiceOption {
	return func(s *ServiceInfo) { s.hostTTL = ttl }
}

// WithTXT sets the service's TXT metadata entries.
func WithTXT(entries [][]byte) ServiceOption {
	return func(s *ServiceInfo) { s.TXT = entries }
}

// NewServiceInfo validates and builds a ServiceInfo. maxSegments bounds
// every name field's label-segment count (the L capacity).
func NewServiceInfo(serviceType, instanceName, hostName string, ipv4 [4]byte, port uint16, maxSegments int, opts ...ServiceOption) (ServiceInfo, error) {
	svcLabel, err := label.New(serviceType, maxSegments)
	if err != nil {
		return ServiceInfo{}, err
	}
	instLabel, err := label.NewInstance(instanceName, maxSegments)
	if err != nil {
		return ServiceInfo{}, err
	}
	hostLabel, err := label.New(hostName, maxSegments)
	if err != nil {
		return ServiceInfo{}, err
	}

	s := ServiceInfo{
		ServiceName:  svcLabel,
		InstanceName: instLabel,
		HostName:     hostLabel,
		IPv4:         ipv4,
		Port:         port,
		serviceTTL:   DefaultServiceTTL,
		hostTTL:      DefaultHostTTL,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

// FullInstanceName returns "InstanceName.ServiceName", e.g.
// "My Printer._ipp._tcp.local".
func (s ServiceInfo) FullInstanceName() label.Label {
	return s.InstanceName.Join(s.ServiceName)
}

func (s ServiceInfo) serviceRecordTTL() uint32 {
	return s.serviceTTL
}

func (s ServiceInfo) hostRecordTTL() uint32 {
	return s.hostTTL
}
