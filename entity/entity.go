// Package entity implements the entity-relation map: a declarative
// registry of named entities at three hierarchy levels connected by
// directed, strength-tagged relations. It exists for LLM/human readable
// notation and topological ordering only; it carries no execution
// semantics.
package entity

import (
	"fmt"
)

// Strength tags a relation as a required ($H) or informational ($L)
// dependency. Only $H relations are surfaced by HighPriorityDependencies;
// both populate the adjacency used for topological ordering.
type Strength string

const (
	High Strength = "$H"
	Low  Strength = "$L"
)

// Level is an entity's place in the three-tier hierarchy.
type Level string

const (
	// N1 holds primary input entities.
	N1 Level = "N1"
	// N2 holds processing entities.
	N2 Level = "N2"
	// N3 holds output entities.
	N3 Level = "N3"
)

type Direction string

const (
	Forward  Direction = "→"
	Backward Direction = "←"
)

type Entity struct {
	Name     string
	Level    Level
	Metadata map[string]any
}

// Key is the registry key, e.g. "N2:SearchQuery".
func (e *Entity) Key() string {
	return fmt.Sprintf("%s:%s", e.Level, e.Name)
}

func (e *Entity) String() string {
	return e.Key()
}

type Relation struct {
	Source    *Entity
	Target    *Entity
	Strength  Strength
	Direction Direction
}

// String renders the relation in notation form:
// N1:Keyword $H→ N2:SerpQuery
func (r *Relation) String() string {
	return fmt.Sprintf("%s %s%s %s", r.Source, r.Strength, r.Direction, r.Target)
}
