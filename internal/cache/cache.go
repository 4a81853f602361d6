// Package cache holds fetched entity lists keyed by platform, kind and
// connection. Every key carries a generation; invalidation bumps it so a
// load that started earlier can still be stored but is never served fresh.
package cache

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/billinghub/internal/domain"
)

// Key scopes one cached list. Kind is a collection name and may carry a
// subkey, as in "products-<familyId>".
type Key struct {
	Platform     domain.Platform `json:"platform"`
	Kind         string          `json:"kind"`
	ConnectionID string          `json:"connection_id"`
}

func NewKey(platform domain.Platform, kind domain.EntityKind, connectionID string) Key {
	return Key{Platform: platform, Kind: kind.Collection(), ConnectionID: connectionID}
}

// FamilyProductsKey scopes the products of one family, separate from the
// connection-wide products list.
func FamilyProductsKey(platform domain.Platform, familyID, connectionID string) Key {
	return Key{Platform: platform, Kind: domain.KindProduct.Collection() + "-" + familyID, ConnectionID: connectionID}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Platform, k.Kind, k.ConnectionID)
}

// Store is implemented by the memory and Redis backends.
type Store interface {
	// Get returns the items stored under key when they are fresh.
	Get(ctx context.Context, key Key) ([]domain.EntityItem, bool, error)
	// Generation is read before a load starts and handed back to Put.
	Generation(ctx context.Context, key Key) (uint64, error)
	// Put stores items loaded at generation gen. If the key was invalidated
	// in the meantime the items are kept but stay stale.
	Put(ctx context.Context, key Key, items []domain.EntityItem, gen uint64) error
	Invalidate(ctx context.Context, keys ...Key) error
	InvalidateConnection(ctx context.Context, connectionID string) error
}
