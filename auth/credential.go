package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
)

// CredentialCache holds provider credentials by handle, it is shared process wide and entries are never evicted
type CredentialCache struct {
	store *bridge.Store[*sdk.Credential]
}

// NewCredentialCache creates cache, gauge can be nil
func NewCredentialCache(gauge prometheus.Gauge) *CredentialCache {
	return &CredentialCache{store: bridge.NewStore[*sdk.Credential](gauge)}
}

// Add stores credential and returns its handle
func (c *CredentialCache) Add(credential *sdk.Credential) string {
	return c.store.Put(credential)
}

// Get returns credential for handle
func (c *CredentialCache) Get(handle string) (*sdk.Credential, error) {
	credential, ok := c.store.Get(handle)
	if !ok {
		return nil, bridge.CredentialNotFound()
	}
	return credential, nil
}

// Len returns number of cached credentials
func (c *CredentialCache) Len() int {
	return c.store.Len()
}
