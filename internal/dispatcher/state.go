package dispatcher

import (
	"fmt"

	"github.com/railzwaylabs/billinghub/internal/domain"
)

// State is where a node is in its lazy-load lifecycle.
type State int

const (
	Collapsed State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Expansion is the outcome of expanding one node.
type Expansion struct {
	NodeID   string            `json:"node_id"`
	State    State             `json:"state"`
	Children []domain.TreeNode `json:"children"`
	// Stale is set when the node was collapsed or refreshed while loading;
	// the children must not be rendered.
	Stale     bool   `json:"stale,omitempty"`
	FromCache bool   `json:"from_cache,omitempty"`
	Error     string `json:"error,omitempty"`
}

type nodeState struct {
	state State
	epoch uint64
}

func stateKey(n domain.TreeNode) string {
	return n.ConnectionID + "|" + n.ID
}
