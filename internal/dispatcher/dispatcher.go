// Package dispatcher resolves tree nodes lazily through the platform
// adapters and keeps the entity cache consistent with mutations.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/railzwaylabs/billinghub/internal/adapters"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/cache"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/nodetype"
	"github.com/railzwaylabs/billinghub/internal/transport"
	"go.uber.org/zap"
)

var ErrNotExpandable = errors.New("node_not_expandable")

// containerOrder is the order synthesized containers appear under a
// connection.
var containerOrder = []domain.EntityKind{
	domain.KindCustomer,
	domain.KindSubscription,
	domain.KindProductFamily,
	domain.KindInvoice,
	domain.KindCoupon,
	domain.KindPayment,
}

type Dispatcher struct {
	registry *adapters.Registry
	cache    cache.Store
	backend  adapters.Backend
	audit    auditdomain.Recorder
	log      *zap.Logger

	mu    sync.Mutex
	nodes map[string]*nodeState
	// seq hands out load epochs; it never repeats, even across forgotten nodes.
	seq uint64
}

// New builds a dispatcher. audit may be nil.
func New(registry *adapters.Registry, store cache.Store, backend adapters.Backend, audit auditdomain.Recorder, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		cache:    store,
		backend:  backend,
		audit:    audit,
		log:      log.Named("dispatcher"),
		nodes:    make(map[string]*nodeState),
	}
}

// Tree loads the initial forest and normalizes every node. Connections that
// arrive unresolved get their containers synthesized.
func (d *Dispatcher) Tree(ctx context.Context) ([]domain.TreeNode, error) {
	var roots []domain.TreeNode
	if err := d.backend.Get(ctx, transport.Path("api", "tree"), nil, &roots); err != nil {
		return nil, err
	}
	out := make([]domain.TreeNode, 0, len(roots))
	for _, n := range roots {
		out = append(out, nodetype.Normalize(d.fillConnections(n)))
	}
	return out, nil
}

func (d *Dispatcher) fillConnections(n domain.TreeNode) domain.TreeNode {
	if nodetype.Parse(n.Type) == nodetype.Connection {
		if n.ConnectionID == "" {
			n.ConnectionID = n.ID
		}
		if n.PlatformType == "" && n.Data != nil && n.Data.Connection != nil {
			n.PlatformType = n.Data.Connection.PlatformType
		}
		if n.Children == nil {
			n.Children = Containers(n.PlatformType, n.ConnectionID)
		}
		return n
	}
	for i := range n.Children {
		if n.Children[i].PlatformType == "" {
			n.Children[i].PlatformType = n.PlatformType
		}
		n.Children[i] = d.fillConnections(n.Children[i])
	}
	return n
}

// Containers returns the unresolved folders of a connection, one per kind
// the platform can list.
func Containers(platform domain.Platform, connectionID string) []domain.TreeNode {
	out := []domain.TreeNode{}
	for _, kind := range containerOrder {
		if !domain.Capabilities(platform, kind).Has(domain.OpList) {
			continue
		}
		k, _ := nodetype.ContainerFor(kind)
		out = append(out, nodetype.Normalize(domain.TreeNode{
			ID:           slug.Make(connectionID + " " + kind.Collection()),
			Type:         k.String(),
			ConnectionID: connectionID,
			PlatformType: platform,
		}))
	}
	return out
}

// target is what a node lists when expanded.
type target struct {
	kind     domain.EntityKind
	familyID string
	key      cache.Key
}

func resolveTarget(n domain.TreeNode) (target, error) {
	k := nodetype.Parse(n.Type)
	switch {
	case k.IsContainer():
		kind, _ := k.Entity()
		return target{kind: kind, key: cache.NewKey(n.PlatformType, kind, n.ConnectionID)}, nil
	case k == nodetype.ProductFamily:
		familyID := n.ID
		if n.Data != nil && n.Data.ProductFamily != nil {
			familyID = n.Data.ProductFamily.ID
		}
		return target{
			kind:     domain.KindProduct,
			familyID: familyID,
			key:      cache.FamilyProductsKey(n.PlatformType, familyID, n.ConnectionID),
		}, nil
	default:
		return target{}, fmt.Errorf("%w: %s", ErrNotExpandable, n.Type)
	}
}

func validateScope(n domain.TreeNode) error {
	if !n.PlatformType.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPlatform, n.PlatformType)
	}
	if n.ConnectionID == "" {
		return domain.ErrInvalidConnection
	}
	return nil
}

// Expand resolves a node's children. Pre-resolved nodes are returned as
// they are; listing a kind the platform does not offer yields no children.
// Adapter failures become a single inline error child.
func (d *Dispatcher) Expand(ctx context.Context, n domain.TreeNode) (Expansion, error) {
	if n.Resolved() {
		d.settle(n, Loaded, 0, false)
		return Expansion{NodeID: n.ID, State: Loaded, Children: n.Children}, nil
	}
	if err := validateScope(n); err != nil {
		return Expansion{}, err
	}
	if !nodetype.Lookup(n.Type).IsLazyLoaded(n) {
		return Expansion{}, fmt.Errorf("%w: %s", ErrNotExpandable, n.Type)
	}
	t, err := resolveTarget(n)
	if err != nil {
		return Expansion{}, err
	}
	if !domain.Capabilities(n.PlatformType, t.kind).Has(domain.OpList) {
		d.settle(n, Loaded, 0, false)
		return Expansion{NodeID: n.ID, State: Loaded, Children: []domain.TreeNode{}}, nil
	}

	epoch := d.begin(n)

	if items, ok, err := d.cache.Get(ctx, t.key); err != nil {
		d.log.Warn("cache read failed", zap.String("key", t.key.String()), zap.Error(err))
	} else if ok {
		if !d.settle(n, Loaded, epoch, true) {
			return Expansion{NodeID: n.ID, State: Collapsed, Children: []domain.TreeNode{}, Stale: true}, nil
		}
		return Expansion{NodeID: n.ID, State: Loaded, Children: d.children(n, t, items), FromCache: true}, nil
	}

	gen, err := d.cache.Generation(ctx, t.key)
	if err != nil {
		d.log.Warn("cache generation read failed", zap.String("key", t.key.String()), zap.Error(err))
	}

	items, err := d.list(ctx, n, t)
	if err != nil {
		d.log.Info("expand failed",
			zap.String("node_id", n.ID),
			zap.String("key", t.key.String()),
			zap.Error(err),
		)
		if !d.settle(n, Errored, epoch, true) {
			return Expansion{NodeID: n.ID, State: Collapsed, Children: []domain.TreeNode{}, Stale: true}, nil
		}
		return Expansion{NodeID: n.ID, State: Errored, Children: []domain.TreeNode{errorLeaf(n, err)}, Error: Message(err)}, nil
	}

	if err := d.cache.Put(ctx, t.key, items, gen); err != nil {
		d.log.Warn("cache write failed", zap.String("key", t.key.String()), zap.Error(err))
	}
	if !d.settle(n, Loaded, epoch, true) {
		return Expansion{NodeID: n.ID, State: Collapsed, Children: []domain.TreeNode{}, Stale: true}, nil
	}
	return Expansion{NodeID: n.ID, State: Loaded, Children: d.children(n, t, items)}, nil
}

func (d *Dispatcher) list(ctx context.Context, n domain.TreeNode, t target) ([]domain.EntityItem, error) {
	a, err := d.registry.Get(n.PlatformType)
	if err != nil {
		return nil, err
	}
	return adapters.ListItems(ctx, a, t.kind, n.ConnectionID, t.familyID)
}

func (d *Dispatcher) children(parent domain.TreeNode, t target, items []domain.EntityItem) []domain.TreeNode {
	kind := nodetype.ItemKind(t.kind)
	out := make([]domain.TreeNode, 0, len(items))
	for i := range items {
		item := items[i]
		child := domain.TreeNode{
			ID:           fmt.Sprintf("%s:%s:%s", parent.ConnectionID, t.kind.Collection(), item.ID()),
			Type:         kind.String(),
			ConnectionID: parent.ConnectionID,
			PlatformType: parent.PlatformType,
			Data:         &item,
		}
		if !nodetype.For(kind).HasChildren(child) {
			child.Children = []domain.TreeNode{}
		}
		out = append(out, nodetype.Normalize(child))
	}
	return out
}

func errorLeaf(parent domain.TreeNode, err error) domain.TreeNode {
	return nodetype.Normalize(domain.TreeNode{
		ID:           parent.ID + ":error",
		Type:         nodetype.Error.String(),
		Name:         Message(err),
		ConnectionID: parent.ConnectionID,
		PlatformType: parent.PlatformType,
		Children:     []domain.TreeNode{},
	})
}

// Message is the text shown for a failed load or mutation.
func Message(err error) string {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) && upstream.VendorMessage != "" {
		return upstream.VendorMessage
	}
	if errors.Is(err, domain.ErrNetwork) {
		return "The billing backend could not be reached."
	}
	return err.Error()
}

// begin moves a node to Loading and returns the epoch the load belongs to.
func (d *Dispatcher) begin(n domain.TreeNode) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.state(n)
	d.seq++
	st.epoch = d.seq
	st.state = Loading
	return st.epoch
}

// settle records the outcome of a load. When checkEpoch is set the outcome
// only applies if the node is still loading the same epoch; it reports
// whether it did.
func (d *Dispatcher) settle(n domain.TreeNode, s State, epoch uint64, checkEpoch bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !checkEpoch {
		d.state(n).state = s
		return true
	}
	st, ok := d.nodes[stateKey(n)]
	if !ok || st.epoch != epoch || st.state != Loading {
		return false
	}
	st.state = s
	return true
}

// state must be called with mu held.
func (d *Dispatcher) state(n domain.TreeNode) *nodeState {
	key := stateKey(n)
	st, ok := d.nodes[key]
	if !ok {
		st = &nodeState{}
		d.nodes[key] = st
	}
	return st
}

// State reports where a node is in its lifecycle.
func (d *Dispatcher) State(n domain.TreeNode) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.nodes[stateKey(n)]; ok {
		return st.state
	}
	return Collapsed
}

// Collapse returns a node to Collapsed. A load still in flight settles as
// stale.
func (d *Dispatcher) Collapse(n domain.TreeNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.nodes, stateKey(n))
}

// Refresh drops the node's cached list and expands it again. Refreshing a
// connection drops everything cached for it.
func (d *Dispatcher) Refresh(ctx context.Context, n domain.TreeNode) (Expansion, error) {
	if nodetype.Parse(n.Type) == nodetype.Connection {
		connectionID := n.ConnectionID
		if connectionID == "" {
			connectionID = n.ID
		}
		if err := d.cache.InvalidateConnection(ctx, connectionID); err != nil {
			return Expansion{}, err
		}
		d.forgetConnection(connectionID)
		return Expansion{NodeID: n.ID, State: Loaded, Children: Containers(n.PlatformType, connectionID)}, nil
	}

	if err := validateScope(n); err != nil {
		return Expansion{}, err
	}
	if !nodetype.Lookup(n.Type).IsLazyLoaded(n) {
		return Expansion{}, fmt.Errorf("%w: %s", ErrNotExpandable, n.Type)
	}
	t, err := resolveTarget(n)
	if err != nil {
		return Expansion{}, err
	}
	if err := d.cache.Invalidate(ctx, t.key); err != nil {
		return Expansion{}, err
	}
	d.Collapse(n)
	n.Children = nil
	return d.Expand(ctx, n)
}

// forgetConnection drops the node states of a connection. Loads still in
// flight find no state to settle and report stale.
func (d *Dispatcher) forgetConnection(connectionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prefix := connectionID + "|"
	for key := range d.nodes {
		if strings.HasPrefix(key, prefix) {
			delete(d.nodes, key)
		}
	}
}

// ForgetConnection drops every cached list and node state of a connection.
func (d *Dispatcher) ForgetConnection(ctx context.Context, connectionID string) error {
	d.forgetConnection(connectionID)
	return d.cache.InvalidateConnection(ctx, connectionID)
}
