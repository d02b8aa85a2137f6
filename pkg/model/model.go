// Package model defines the core data types for module capture: FileDependencyNode, Module, Mapping, Graph, and Detection.
package model

import (
	"fmt"
	"strings"
)

// FileDependencyNode is one captured file together with the local files it imports or re-exports.
// Each node is owned by exactly one parent.
type FileDependencyNode struct {
	Path          string                `json:"path" yaml:"path"`
	Content       string                `json:"content" yaml:"content"`
	Dependencies  []*FileDependencyNode `json:"dependencies" yaml:"dependencies"`
	ExportedNames []string              `json:"exportedNames,omitempty" yaml:"exportedNames,omitempty"`
}

// Count returns the number of nodes in the tree rooted at n.
func (n *FileDependencyNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, dep := range n.Dependencies {
		total += dep.Count()
	}
	return total
}

// Module is a captured dependency closure registered under Name.
// OriginalName is the base identifier replaced during instantiation.
type Module struct {
	Name          string              `json:"name" yaml:"name"`
	OriginalName  string              `json:"originalName" yaml:"originalName"`
	ExportedNames []string            `json:"exportedNames" yaml:"exportedNames"`
	Deps          *FileDependencyNode `json:"deps" yaml:"deps"`
}

// FileCount returns the number of files in the module closure.
func (m *Module) FileCount() int {
	if m == nil {
		return 0
	}
	return m.Deps.Count()
}

// Mapping is the registry from module name to the opaque id of its stored record.
type Mapping map[string]string

// Names returns the registered module names in no particular order.
func (m Mapping) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// GraphNode is one file in a dependency Graph arena.
type GraphNode struct {
	Path          string   `json:"path" yaml:"path"`
	Content       string   `json:"content" yaml:"content"`
	ExportedNames []string `json:"exportedNames,omitempty" yaml:"exportedNames,omitempty"`
}

// Edge is a local import/re-export edge between two arena indices.
type Edge struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Graph is a dependency closure stored as an arena of nodes plus an edge list.
// Nodes[0] is the entry file. A file imported from several places appears once
// and is referenced by several edges.
type Graph struct {
	Nodes []GraphNode `json:"nodes" yaml:"nodes"`
	Edges []Edge      `json:"edges" yaml:"edges"`
}

// Index returns the arena index of path, or -1.
func (g Graph) Index(path string) int {
	for i, node := range g.Nodes {
		if node.Path == path {
			return i
		}
	}
	return -1
}

// Dependencies returns the arena indices directly imported by node i, in edge order.
func (g Graph) Dependencies(i int) []int {
	var out []int
	for _, edge := range g.Edges {
		if edge.From == i {
			out = append(out, edge.To)
		}
	}
	return out
}

// Confidence grades a detected module boundary.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalizes raw into a known Confidence.
func ParseConfidence(raw string) (Confidence, error) {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(raw))); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c, nil
	default:
		return "", fmt.Errorf("unknown confidence %q (expected high, medium or low)", raw)
	}
}

// DetectedModule is one candidate module returned by the detection oracle.
type DetectedModule struct {
	ModuleName string     `json:"moduleName" yaml:"moduleName"`
	EntryFile  string     `json:"entryFile" yaml:"entryFile"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// Detection is the oracle's response record.
type Detection struct {
	Modules []DetectedModule `json:"modules" yaml:"modules"`
}
