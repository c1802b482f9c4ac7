package optimistic

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownKey is returned by Begin when the key is not in the collection.
	ErrUnknownKey = errors.New("key not in collection")
	// ErrPending is returned by Begin under PolicySerialize when the key
	// already has a mutation in flight.
	ErrPending = errors.New("update already in progress")
)

// CommitFunc performs the remote write for a mutation. It is called exactly
// once per applied mutation and is never retried by the controller.
type CommitFunc[K comparable, T any] func(ctx context.Context, key K, patch Patch[T]) error

// RemoveFunc performs the remote delete for a bulk removal.
type RemoveFunc[K comparable] func(ctx context.Context, keys []K) error

// FailureFunc presents a failed mutation to the user.
type FailureFunc[K comparable] func(key K, message string)

// Policy selects how a second mutation on a key with one already in flight
// is handled.
type Policy int

const (
	// PolicyConcurrent accepts overlapping mutations on the same key. Each
	// field keeps the snapshot taken by the first unresolved mutation that
	// touched it until a commit confirms a newer value.
	PolicyConcurrent Policy = iota
	// PolicySerialize rejects a mutation while another is in flight for the
	// same key and reports it through the FailureFunc.
	PolicySerialize
)

func (p Policy) String() string {
	switch p {
	case PolicySerialize:
		return "serialize"
	default:
		return "concurrent"
	}
}

// ParsePolicy parses a policy name as used in configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "concurrent":
		return PolicyConcurrent, nil
	case "serialize":
		return PolicySerialize, nil
	default:
		return PolicyConcurrent, fmt.Errorf("unknown policy %q", s)
	}
}

// Outcome classifies how a mutation ended.
type Outcome string

const (
	OutcomeCommitted    Outcome = "committed"
	OutcomeRolledBack   Outcome = "rolled_back"
	OutcomePrecondition Outcome = "precondition"
	OutcomeRejected     Outcome = "rejected"
)

// Observer receives one call per mutation outcome.
type Observer interface {
	Observe(collection string, outcome Outcome)
}

// Options configures a Controller.
type Options[K comparable] struct {
	// Name identifies the collection in logs and metrics.
	Name string
	// OnFailure is called once for every rejected commit.
	OnFailure FailureFunc[K]
	// OnChange is called after every visible change to the collection,
	// outside the controller's lock.
	OnChange func()
	Observer Observer
	Policy   Policy
	// Logger defaults to the global zerolog logger tagged with the
	// collection name.
	Logger *zerolog.Logger
}
