package runtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hinoue/batchflow/types"
)

func newDAGRenderer() *dagRenderer {
	return &dagRenderer{nil, &strings.Builder{}}
}

type dagRenderer struct {
	records map[string]*types.NodeSnapshot
	sb      *strings.Builder
}

func (d *dagRenderer) generateDOT(wf *Workflow, records map[string]*types.NodeSnapshot) (string, error) {
	if records == nil {
		records = make(map[string]*types.NodeSnapshot)
	}
	d.records = records

	wf.mu.Lock()
	defer wf.mu.Unlock()

	d.write("digraph D {")
	for _, id := range wf.order {
		d.drawNode(wf.nodes[id])
	}
	for _, id := range wf.order {
		for _, dep := range wf.nodes[id].Dependencies {
			d.write("%s -> %s", idString(dep), idString(id))
		}
	}
	d.write("label=%s", quoteString(wf.name))
	d.write("}")
	return d.sb.String(), nil
}

func packToComment(r *types.NodeSnapshot) string {
	s, _ := json.Marshal(r)
	return formatNL(addSlashes(string(s)))
}

func (d *dagRenderer) calcAttr(id string) string {
	record, exists := d.records[id]
	if !exists {
		return ""
	}

	color := ""
	switch record.Status {
	case types.Running.String():
		color = "yellow"
	case types.Failed.String():
		color = "red"
	case types.Completed.String():
		color = "green"
	default:
		color = "white"
	}
	return fmt.Sprintf(" style=\"filled\" color=\"%s\" comment=\"%s\"", color, packToComment(record))
}

func (d *dagRenderer) drawNode(node *types.Node) {
	attr := d.calcAttr(node.ID)
	d.write("%s [label=%s shape=\"record\"%s]", idString(node.ID), quoteString(node.Name), attr)
}

func (d *dagRenderer) write(format string, s ...any) {
	d.sb.WriteString(fmt.Sprintf(format+"\n", s...))
}

var (
	slashesToken = []string{"\\", "\"", "'", " "}
)

func addSlashes(s string) string {
	for _, token := range slashesToken {
		s = strings.ReplaceAll(s, token, "\\"+token)
	}
	return s
}

func formatNL(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func quoteString(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

var idleChars = []string{" ", "'", "\"", "(", ")", "*", "&", "^", "%", "$", "#", "@", "!", "?", "<", ">", "[", "]", "{", "}", "."}

func idString(s string) string {
	for _, ch := range idleChars {
		s = strings.ReplaceAll(s, ch, "_")
	}
	return s
}
