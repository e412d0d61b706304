package entity

import (
	"strings"

	"github.com/juju/errors"
)

// Map registers entities and their directed relations. Entities are
// keyed by "<level>:<name>"; re-registering an existing key is rejected
// rather than silently overwritten.
type Map struct {
	entities map[string]*Entity
	// order keeps insertion order so notation and execution order are
	// deterministic, independent of map iteration.
	order     []*Entity
	relations []*Relation
	adjacency map[string][]*Entity
}

func NewMap() *Map {
	return &Map{
		entities:  make(map[string]*Entity),
		adjacency: make(map[string][]*Entity),
	}
}

// AddEntity registers a new entity at the given level.
func (m *Map) AddEntity(name string, level Level, metadata map[string]any) (*Entity, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	e := &Entity{Name: name, Level: level, Metadata: metadata}
	if _, exists := m.entities[e.Key()]; exists {
		return nil, errors.AlreadyExistsf("entity: %s", e.Key())
	}
	m.entities[e.Key()] = e
	m.order = append(m.order, e)
	m.adjacency[e.Key()] = nil
	return e, nil
}

// GetEntity looks up an entity by level and name.
func (m *Map) GetEntity(name string, level Level) (*Entity, bool) {
	e, exists := m.entities[string(level)+":"+name]
	return e, exists
}

// AddRelation creates a directed source → target relation. Both
// endpoints must already be registered.
func (m *Map) AddRelation(source, target *Entity, strength Strength, direction Direction) (*Relation, error) {
	if _, exists := m.entities[source.Key()]; !exists {
		return nil, errors.NotFoundf("source entity: %s", source.Key())
	}
	if _, exists := m.entities[target.Key()]; !exists {
		return nil, errors.NotFoundf("target entity: %s", target.Key())
	}
	r := &Relation{Source: source, Target: target, Strength: strength, Direction: direction}
	m.relations = append(m.relations, r)
	m.adjacency[source.Key()] = append(m.adjacency[source.Key()], target)
	return r, nil
}

// Dependencies returns every entity the given entity points at,
// regardless of strength.
func (m *Map) Dependencies(e *Entity) []*Entity {
	return m.adjacency[e.Key()]
}

// HighPriorityDependencies returns the $H targets of the given entity,
// in relation insertion order.
func (m *Map) HighPriorityDependencies(e *Entity) []*Entity {
	deps := make([]*Entity, 0)
	for _, r := range m.relations {
		if r.Source.Key() == e.Key() && r.Strength == High {
			deps = append(deps, r.Target)
		}
	}
	return deps
}

// Notation exports the map in LLM-readable notation, one relation per
// line in insertion order:
//
//	N1:Keyword $H→ N2:SerpQuery
//	N2:SerpQuery $L← N3:CompetitorAnalysis
func (m *Map) Notation() string {
	lines := make([]string, 0, len(m.relations))
	for _, r := range m.relations {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}

// VisualizeASCII renders a grouped listing of entities and relations.
func (m *Map) VisualizeASCII() string {
	sb := &strings.Builder{}
	sb.WriteString("Entity Relation Map\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	sections := []struct {
		level Level
		title string
	}{
		{N1, "N1 (Primary):"},
		{N2, "N2 (Processing):"},
		{N3, "N3 (Output):"},
	}
	for _, section := range sections {
		sb.WriteString("\n" + section.title + "\n")
		for _, e := range m.order {
			if e.Level == section.level {
				sb.WriteString("  - " + e.Name + "\n")
			}
		}
	}

	sb.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	sb.WriteString("Relationships:\n")
	sb.WriteString(m.Notation())
	return sb.String()
}

// ExecutionOrder returns the entities in one valid topological order of
// the relation graph, using Kahn's algorithm with a FIFO queue seeded in
// insertion order. Ties between equal in-degree entities resolve to
// insertion order.
func (m *Map) ExecutionOrder() ([]*Entity, error) {
	inDegree := make(map[string]int, len(m.order))
	for _, e := range m.order {
		inDegree[e.Key()] = 0
	}
	for _, r := range m.relations {
		inDegree[r.Target.Key()]++
	}

	queue := make([]*Entity, 0, len(m.order))
	for _, e := range m.order {
		if inDegree[e.Key()] == 0 {
			queue = append(queue, e)
		}
	}

	executionOrder := make([]*Entity, 0, len(m.order))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		executionOrder = append(executionOrder, current)

		for _, neighbor := range m.adjacency[current.Key()] {
			if inDegree[neighbor.Key()]--; inDegree[neighbor.Key()] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(executionOrder) != len(m.order) {
		remaining := make([]string, 0)
		for _, e := range m.order {
			if inDegree[e.Key()] > 0 {
				remaining = append(remaining, e.Key())
			}
		}
		return nil, errors.Trace(&cycleError{remaining: remaining})
	}
	return executionOrder, nil
}

type cycleError struct {
	remaining []string
}

func (e *cycleError) Error() string {
	return "relation graph contains a cycle: " + strings.Join(e.remaining, ", ")
}
