package beacon

import "github.com/corvidlabs/beacon/internal/cache"

// RemoteService is a peer's service, reconstructed from its PTR+SRV(+A)
// (+TXT) tuple. See internal/cache for the fusion rules.
type RemoteService = cache.RemoteService
