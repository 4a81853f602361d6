package domain

import "strings"

// Operation is one CRUD verb of the capability matrix.
type Operation uint8

const (
	OpList Operation = 1 << iota
	OpCreate
	OpRead
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// OpSet is the typed set of operations a platform offers for one kind.
type OpSet uint8

const (
	opsNone     OpSet = 0
	opsReadOnly       = OpSet(OpList | OpRead)
	opsNoDelete       = OpSet(OpList | OpCreate | OpRead | OpUpdate)
	opsAll            = OpSet(OpList | OpCreate | OpRead | OpUpdate | OpDelete)
)

func (s OpSet) Has(op Operation) bool {
	return s&OpSet(op) != 0
}

func (s OpSet) Empty() bool {
	return s == opsNone
}

func (s OpSet) String() string {
	if s.Empty() {
		return "none"
	}
	var parts []string
	for _, op := range []Operation{OpList, OpCreate, OpRead, OpUpdate, OpDelete} {
		if s.Has(op) {
			parts = append(parts, op.String())
		}
	}
	return strings.Join(parts, ",")
}

// capabilities is the single source of truth for what each vendor can do.
// Pairs missing from the table support nothing.
var capabilities = map[Platform]map[EntityKind]OpSet{
	PlatformMaxio: {
		KindCustomer:      opsAll,
		KindSubscription:  opsAll,
		KindProductFamily: opsNoDelete,
		KindProduct:       opsAll,
		KindInvoice:       opsReadOnly,
	},
	PlatformStripe: {
		KindCustomer:      opsAll,
		KindSubscription:  opsAll,
		KindProductFamily: opsAll,
		KindProduct:       opsNoDelete,
		KindInvoice:       opsReadOnly,
		KindCoupon:        opsAll,
		KindPayment:       opsReadOnly,
	},
	PlatformZuora: {
		KindCustomer:      OpSet(OpList | OpCreate | OpRead),
		KindSubscription:  opsReadOnly,
		KindProductFamily: opsReadOnly,
		KindProduct:       opsReadOnly,
		KindInvoice:       opsReadOnly,
		KindPayment:       opsReadOnly,
	},
}

// Capabilities returns the supported operations for a platform and kind.
func Capabilities(platform Platform, kind EntityKind) OpSet {
	return capabilities[platform][kind]
}

// Require fails with a CapabilityUnsupportedError when op is not offered.
func Require(platform Platform, kind EntityKind, op Operation) error {
	if Capabilities(platform, kind).Has(op) {
		return nil
	}
	return &CapabilityUnsupportedError{Kind: kind, Platform: platform, Op: op}
}
