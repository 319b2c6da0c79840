// Package cache implements the bounded discovery cache that fuses a peer's
// PTR, SRV, TXT, and A records into a RemoteService, keyed by instance
// name, per RFC 6763 §6's multi-record service advertisement model.
package cache

// RemoteService is a discovered peer, reconstructed from its PTR+SRV(+A)
// (+TXT) tuple. InstanceName is the cache key.
type RemoteService struct {
	InstanceName string
	ServiceType  string
	HostName     string
	Port         uint16
	Addr         [4]byte
	HasAddr      bool
	TXT          [][]byte
}

// complete reports whether enough of the tuple has arrived to surface this
// entry: at least a target host name, a port, and an IPv4 address.
func (e *RemoteService) complete() bool {
	return e.HostName != "" && e.Port != 0 && e.HasAddr
}

type entry struct {
	RemoteService
	emitted bool
}

// Cache is a bounded ordered map of in-progress and completed
// RemoteServices, capacity-bounded at R entries. The zero value is not
// usable; construct with New.
type Cache struct {
	capacity int
	order    []string // instance names, oldest first, for eviction
	entries  map[string]*entry
	// hostIndex maps a host name back to every instance name awaiting an A
	// record for it, since A records arrive keyed by host name, not
	// instance name.
	hostIndex map[string][]string
}

// New returns an empty Cache bounded to capacity entries.
func New(capacity int) *Cache {
	return &Cache{
		capacity:  capacity,
		entries:   make(map[string]*entry, capacity),
		hostIndex: make(map[string][]string),
	}
}

// Len reports the number of entries currently tracked (complete or not).
func (c *Cache) Len() int {
	return len(c.entries)
}

// Get returns the named entry's current fusion state.
func (c *Cache) Get(instanceName string) (RemoteService, bool) {
	e, ok := c.entries[instanceName]
	if !ok {
		return RemoteService{}, false
	}
	return e.RemoteService, true
}

func (c *Cache) getOrCreate(instanceName, serviceType string) *entry {
	if e, ok := c.entries[instanceName]; ok {
		return e
	}
	if c.capacity > 0 && len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	e := &entry{RemoteService: RemoteService{InstanceName: instanceName, ServiceType: serviceType}}
	c.entries[instanceName] = e
	c.order = append(c.order, instanceName)
	return e
}

func (c *Cache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	if e, ok := c.entries[oldest]; ok {
		c.unindexHost(oldest, e.HostName)
	}
	delete(c.entries, oldest)
}

func (c *Cache) indexHost(instanceName, host string) {
	if host == "" {
		return
	}
	for _, n := range c.hostIndex[host] {
		if n == instanceName {
			return
		}
	}
	c.hostIndex[host] = append(c.hostIndex[host], instanceName)
}

func (c *Cache) unindexHost(instanceName, host string) {
	if host == "" {
		return
	}
	names := c.hostIndex[host]
	for i, n := range names {
		if n == instanceName {
			c.hostIndex[host] = append(names[:i], names[i+1:]...)
			break
		}
	}
	if len(c.hostIndex[host]) == 0 {
		delete(c.hostIndex, host)
	}
}

// IngestPTR records that instanceName exists under serviceType, introducing
// the cache key if this is the first record seen for it. Reports true if
// this ingestion newly completed the entry.
func (c *Cache) IngestPTR(serviceType, instanceName string) bool {
	e := c.getOrCreate(instanceName, serviceType)
	wasComplete := e.complete()
	return !wasComplete && e.complete() && c.markEmitted(e)
}

// IngestSRV fills an entry's target host name and port.
func (c *Cache) IngestSRV(instanceName, serviceType, hostName string, port uint16) bool {
	e := c.getOrCreate(instanceName, serviceType)
	wasComplete := e.complete()
	if e.HostName != hostName {
		c.unindexHost(instanceName, e.HostName)
		e.HostName = hostName
		c.indexHost(instanceName, hostName)
	}
	e.Port = port
	return !wasComplete && e.complete() && c.markEmitted(e)
}

// IngestTXT fills an entry's metadata.
func (c *Cache) IngestTXT(instanceName, serviceType string, entries [][]byte) bool {
	e := c.getOrCreate(instanceName, serviceType)
	wasComplete := e.complete()
	e.TXT = entries
	return !wasComplete && e.complete() && c.markEmitted(e)
}

// IngestA fills the IPv4 address for every entry currently waiting on
// hostName, returning the instance names that newly became complete.
func (c *Cache) IngestA(hostName string, addr [4]byte) []string {
	var newlyComplete []string
	for _, instanceName := range c.hostIndex[hostName] {
		e, ok := c.entries[instanceName]
		if !ok {
			continue
		}
		wasComplete := e.complete()
		e.Addr = addr
		e.HasAddr = true
		if !wasComplete && e.complete() && c.markEmitted(e) {
			newlyComplete = append(newlyComplete, instanceName)
		}
	}
	return newlyComplete
}

// markEmitted marks e as having been surfaced via OutputRemote, returning
// true the first time (so repeated ingestion of an already-complete entry
// never re-emits).
func (c *Cache) markEmitted(e *entry) bool {
	if e.emitted {
		return false
	}
	e.emitted = true
	return true
}
