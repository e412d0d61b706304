package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildPipelineMap(t *testing.T) (*Map, map[string]*Entity) {
	m := NewMap()
	entities := make(map[string]*Entity)

	add := func(name string, level Level) {
		e, err := m.AddEntity(name, level, nil)
		assert.Nil(t, err)
		entities[name] = e
	}
	add("Keyword", N1)
	add("SerpQuery", N2)
	add("WebScraper", N2)
	add("TopResults", N3)
	add("CompetitorContent", N3)

	relate := func(source, target string, strength Strength) {
		_, err := m.AddRelation(entities[source], entities[target], strength, Forward)
		assert.Nil(t, err)
	}
	relate("Keyword", "SerpQuery", High)
	relate("SerpQuery", "TopResults", High)
	relate("TopResults", "WebScraper", High)
	relate("WebScraper", "CompetitorContent", High)
	relate("SerpQuery", "WebScraper", Low)

	return m, entities
}

func TestAddEntityDuplicate(t *testing.T) {
	m := NewMap()
	_, err := m.AddEntity("Keyword", N1, nil)
	assert.Nil(t, err)

	_, err = m.AddEntity("Keyword", N1, nil)
	assert.NotNil(t, err)

	// same name at another level is a distinct entity
	_, err = m.AddEntity("Keyword", N2, nil)
	assert.Nil(t, err)
}

func TestAddRelationUnknownEntity(t *testing.T) {
	m := NewMap()
	known, err := m.AddEntity("Keyword", N1, nil)
	assert.Nil(t, err)

	unknown := &Entity{Name: "Ghost", Level: N2}
	_, err = m.AddRelation(known, unknown, High, Forward)
	assert.NotNil(t, err)
	_, err = m.AddRelation(unknown, known, High, Forward)
	assert.NotNil(t, err)
}

func TestHighPriorityDependencies(t *testing.T) {
	m, entities := buildPipelineMap(t)

	deps := m.HighPriorityDependencies(entities["SerpQuery"])
	assert.Len(t, deps, 1)
	assert.Equal(t, "N3:TopResults", deps[0].Key())

	// the $L relation still shows in the full adjacency
	all := m.Dependencies(entities["SerpQuery"])
	assert.Len(t, all, 2)
}

func TestNotation(t *testing.T) {
	m, _ := buildPipelineMap(t)

	notation := m.Notation()
	lines := strings.Split(notation, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "N1:Keyword $H→ N2:SerpQuery", lines[0])
	assert.Equal(t, "N2:SerpQuery $H→ N3:TopResults", lines[1])
	assert.Equal(t, "N2:SerpQuery $L→ N2:WebScraper", lines[4])
}

func TestVisualizeASCII(t *testing.T) {
	m, _ := buildPipelineMap(t)

	out := m.VisualizeASCII()
	assert.Contains(t, out, "N1 (Primary):")
	assert.Contains(t, out, "  - Keyword")
	assert.Contains(t, out, "N2 (Processing):")
	assert.Contains(t, out, "N3 (Output):")
	assert.Contains(t, out, "N1:Keyword $H→ N2:SerpQuery")
}

func TestExecutionOrder(t *testing.T) {
	m, entities := buildPipelineMap(t)

	order, err := m.ExecutionOrder()
	assert.Nil(t, err)
	assert.Len(t, order, len(entities))

	// every relation must point forward in the order
	position := make(map[string]int)
	for i, e := range order {
		position[e.Key()] = i
	}
	for _, source := range []string{"Keyword", "SerpQuery", "TopResults", "WebScraper"} {
		for _, target := range m.Dependencies(entities[source]) {
			assert.Less(t, position[entities[source].Key()], position[target.Key()])
		}
	}
	assert.Equal(t, "N1:Keyword", order[0].Key())
}

func TestExecutionOrderCycle(t *testing.T) {
	m := NewMap()
	a, _ := m.AddEntity("A", N2, nil)
	b, _ := m.AddEntity("B", N2, nil)
	_, err := m.AddRelation(a, b, High, Forward)
	assert.Nil(t, err)
	_, err = m.AddRelation(b, a, High, Forward)
	assert.Nil(t, err)

	_, err = m.ExecutionOrder()
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
