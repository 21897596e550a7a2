package workflow

import (
	"fmt"
	"math/rand"
	"strings"

	"videogenhost/internal/domain"
)

// SeedMode controls when the sampler seed is chosen.
type SeedMode string

const (
	// SeedModeFixed picks the seed once at template construction and reuses it
	// for every submission. This mirrors the long-standing behavior of the
	// service and is kept deliberately rather than silently changed.
	SeedModeFixed SeedMode = "fixed"
	// SeedModePerJob draws a fresh seed for every built payload.
	SeedModePerJob SeedMode = "per_job"
)

// Node is one step of the generation graph. Inputs map input names to either
// JSON literals or [nodeID, outputIndex] references to other nodes.
type Node struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
	Meta      *NodeMeta      `json:"_meta,omitempty"`
}

// NodeMeta carries display-only metadata the backend tolerates and ignores.
type NodeMeta struct {
	Title string `json:"title,omitempty"`
}

// Graph is a directed graph of named nodes, keyed by node id.
type Graph map[string]Node

// Template is an immutable base graph plus the coordinates of the inputs that
// vary: the positive-prompt text and the sampler seed.
type Template struct {
	base        Graph
	promptNode  string
	promptInput string
	seedNode    string
	seedInput   string
	seedMode    SeedMode
}

// NewTemplate validates the base graph once and captures the substitution
// points. The graph is copied so later mutations of the argument cannot leak
// into built payloads.
func NewTemplate(base Graph, promptNode, seedNode string, mode SeedMode) (*Template, error) {
	t := &Template{
		base:        base.clone(),
		promptNode:  promptNode,
		promptInput: "text",
		seedNode:    seedNode,
		seedInput:   "seed",
		seedMode:    mode,
	}
	if _, ok := t.base[promptNode]; !ok {
		return nil, fmt.Errorf("%w: prompt node %q missing from template", domain.ErrValidation, promptNode)
	}
	if _, ok := t.base[seedNode]; !ok {
		return nil, fmt.Errorf("%w: seed node %q missing from template", domain.ErrValidation, seedNode)
	}
	if mode == SeedModeFixed {
		t.base.setInput(seedNode, t.seedInput, randomSeed())
	}
	if err := t.base.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Build derives a fully-substituted payload for one submission. The returned
// graph shares no mutable state with the template.
func (t *Template) Build(prompt string) (Graph, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	g := t.base.clone()
	g.setInput(t.promptNode, t.promptInput, prompt)
	if t.seedMode == SeedModePerJob {
		g.setInput(t.seedNode, t.seedInput, randomSeed())
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the structural contract the backend enforces: every node has
// a class type, and every [nodeID, outputIndex] input reference resolves to an
// existing node with a non-negative output index. It must pass before any
// network I/O.
func (g Graph) Validate() error {
	if len(g) == 0 {
		return fmt.Errorf("%w: empty graph", domain.ErrValidation)
	}
	for id, node := range g {
		if strings.TrimSpace(node.ClassType) == "" {
			return fmt.Errorf("%w: node %q has no class_type", domain.ErrValidation, id)
		}
		for name, value := range node.Inputs {
			ref, ok := asReference(value)
			if !ok {
				continue
			}
			if _, ok := g[ref.nodeID]; !ok {
				return fmt.Errorf("%w: node %q input %q references unknown node %q", domain.ErrValidation, id, name, ref.nodeID)
			}
			if ref.output < 0 {
				return fmt.Errorf("%w: node %q input %q has negative output index", domain.ErrValidation, id, name)
			}
		}
	}
	return nil
}

type reference struct {
	nodeID string
	output int
}

// asReference recognizes the two-element [nodeID, outputIndex] form. Output
// indices arrive as int from Go literals and as float64 from decoded JSON.
func asReference(value any) (reference, bool) {
	pair, ok := value.([]any)
	if !ok || len(pair) != 2 {
		return reference{}, false
	}
	nodeID, ok := pair[0].(string)
	if !ok {
		return reference{}, false
	}
	switch idx := pair[1].(type) {
	case int:
		return reference{nodeID: nodeID, output: idx}, true
	case float64:
		return reference{nodeID: nodeID, output: int(idx)}, true
	default:
		return reference{}, false
	}
}

func (g Graph) clone() Graph {
	out := make(Graph, len(g))
	for id, node := range g {
		copied := Node{ClassType: node.ClassType, Inputs: make(map[string]any, len(node.Inputs))}
		if node.Meta != nil {
			meta := *node.Meta
			copied.Meta = &meta
		}
		for name, value := range node.Inputs {
			copied.Inputs[name] = cloneValue(value)
		}
		out[id] = copied
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func (g Graph) setInput(nodeID, input string, value any) {
	node, ok := g[nodeID]
	if !ok {
		return
	}
	node.Inputs[input] = value
	g[nodeID] = node
}

func randomSeed() int64 {
	return rand.Int63n(1 << 32)
}
