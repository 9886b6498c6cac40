package search

import (
	"fmt"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

const (
	// MaxResultDocuments caps the length of every FindTop result.
	MaxResultDocuments = 5
	// RelevanceEpsilon is the tolerance below which two relevance values
	// are considered equal and ranking falls back to rating.
	RelevanceEpsilon = 1e-6
	// BucketCount is the shard count of the parallel scoring accumulator.
	BucketCount = 100
)

// DocumentStatus tags a document at insert time. The status-filtering
// FindTop variants select on it, and Match reports it back to the caller.
type DocumentStatus int

const (
	StatusActual DocumentStatus = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

func (s DocumentStatus) String() string {
	switch s {
	case StatusActual:
		return "actual"
	case StatusIrrelevant:
		return "irrelevant"
	case StatusBanned:
		return "banned"
	case StatusRemoved:
		return "removed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts the wire form produced by String back to a status.
func ParseStatus(s string) (DocumentStatus, error) {
	switch s {
	case "actual":
		return StatusActual, nil
	case "irrelevant":
		return StatusIrrelevant, nil
	case "banned":
		return StatusBanned, nil
	case "removed":
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("unknown document status %q: %w", s, pkgerrors.ErrInvalidArgument)
	}
}

// Document is a single ranked search hit.
type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Predicate filters scoring candidates by id, status, and rating. A
// predicate passed to a parallel FindTop variant may be called from
// multiple goroutines at once.
type Predicate func(id int, status DocumentStatus, rating int) bool

// ExecutionPolicy selects the sequential or parallel implementation of
// FindTop, Match, and RemoveDocument.
type ExecutionPolicy int

const (
	Sequential ExecutionPolicy = iota
	Parallel
)

func (p ExecutionPolicy) String() string {
	if p == Parallel {
		return "parallel"
	}
	return "sequential"
}

// ParsePolicy converts "sequential"/"parallel" to an ExecutionPolicy.
// The empty string maps to Sequential.
func ParsePolicy(s string) (ExecutionPolicy, error) {
	switch s {
	case "", "sequential", "seq":
		return Sequential, nil
	case "parallel", "par":
		return Parallel, nil
	default:
		return 0, fmt.Errorf("unknown execution policy %q: %w", s, pkgerrors.ErrInvalidArgument)
	}
}
