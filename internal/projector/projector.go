// Package projector translates decoded envelopes into role-specific side
// effects. Exactly one projector variant is active per process, selected by
// configuration at startup, never by runtime data.
package projector

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskstream/fanout/internal/config"
	"github.com/taskstream/fanout/internal/event"
	"github.com/taskstream/fanout/internal/logging"
	"github.com/taskstream/fanout/internal/storage"
)

// Delivery is one consumed message handed to a projector: the topic it arrived
// on, the optional partition key, the verbatim wire payload, and the decoded
// envelope.
type Delivery struct {
	Topic string
	Key   string
	Raw   []byte
	Event event.Envelope
}

// Projector is the strategy interface implemented by each role variant.
type Projector interface {
	// Role names the variant.
	Role() config.Role
	// Bootstrap prepares the variant's storage. It runs once at process start,
	// must be idempotent, and a failure here is fatal for the process.
	Bootstrap(ctx context.Context) error
	// Project applies one delivery. Writes must tolerate redelivery of the
	// same message without corrupting derived state.
	Project(ctx context.Context, d Delivery) error
}

// Deps holds the collaborators a projector may need. Only the stores the role
// requires have to be set; Build validates the rest.
type Deps struct {
	DB     storage.Relational
	KV     storage.KeyValue
	Logger logging.ServiceLogger
}

// Builder constructs a projector variant from its dependencies.
type Builder func(deps Deps) (Projector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[config.Role]Builder)
)

// Register adds a projector builder for a role. Variants register themselves
// from init so adding a role is additive.
func Register(role config.Role, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[role] = builder
}

// Build constructs the projector for the given role.
func Build(role config.Role, deps Deps) (Projector, error) {
	registryMu.RLock()
	builder, ok := registry[role]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("projector: unknown role %q (known: %v)", role, config.Roles())
	}
	if role.NeedsRelational() && deps.DB == nil {
		return nil, fmt.Errorf("projector: role %q requires a relational store", role)
	}
	if role.NeedsKeyValue() && deps.KV == nil {
		return nil, fmt.Errorf("projector: role %q requires a key-value store", role)
	}
	return builder(deps)
}
