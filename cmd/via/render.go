package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/via/internal/module"
	"github.com/odvcencio/via/internal/store"
	"github.com/odvcencio/via/pkg/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	createdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	mergedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func emitJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func emitYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}

func renderSummary(summary module.Summary, dryRun bool) string {
	var sb strings.Builder
	title := fmt.Sprintf("Created module %q", summary.Name)
	if dryRun {
		title += " (dry run, nothing written)"
	}
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")

	if len(summary.Created) > 0 {
		sb.WriteString("\n")
		sb.WriteString(createdStyle.Render(fmt.Sprintf("NEW FILES (%d)", len(summary.Created))))
		sb.WriteString("\n")
		for _, p := range summary.Created {
			sb.WriteString("  + " + p + "\n")
		}
	}
	if len(summary.Merged) > 0 {
		sb.WriteString("\n")
		sb.WriteString(mergedStyle.Render(fmt.Sprintf("MERGED FILES (%d)", len(summary.Merged))))
		sb.WriteString("\n")
		for _, p := range summary.Merged {
			sb.WriteString("  ~ " + p + "\n")
		}
	}
	if len(summary.Warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range summary.Warnings {
			sb.WriteString(warnStyle.Render("  ! "+w) + "\n")
		}
	}
	if summary.Conflicts > 0 {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("\n%d existing declaration(s) kept", summary.Conflicts)))
		sb.WriteString("\n")
	}
	if summary.Skipped > 0 {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("\n%d empty file(s) skipped", summary.Skipped)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderList(root string, entries []store.Entry) string {
	if len(entries) == 0 {
		return mutedStyle.Render(fmt.Sprintf("no modules learned yet in %s; run 'via learn'", root)) + "\n"
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("MODULES (%d)", len(entries))))
	sb.WriteString("\n")
	for _, entry := range entries {
		line := fmt.Sprintf("  %-24s %s", entry.Name, mutedStyle.Render(fmt.Sprintf("%d bytes", entry.SizeBytes)))
		if entry.Missing {
			line = fmt.Sprintf("  %-24s %s", entry.Name, warnStyle.Render("record missing"))
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(mutedStyle.Render("\nrecreate one with 'via <module> create <new-name>'"))
	sb.WriteString("\n")
	return sb.String()
}

func renderModule(mod *model.Module) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(mod.Name))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  original name: %s\n", mod.OriginalName)
	fmt.Fprintf(&sb, "  files:         %d\n", mod.FileCount())
	if len(mod.ExportedNames) > 0 {
		fmt.Fprintf(&sb, "  exports:       %s\n", strings.Join(mod.ExportedNames, ", "))
	}
	sb.WriteString("\n")
	writeTree(&sb, mod.Deps, 1)
	return sb.String()
}

func writeTree(sb *strings.Builder, node *model.FileDependencyNode, depth int) {
	if node == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(node.Path)
	sb.WriteString("\n")
	for _, dep := range node.Dependencies {
		writeTree(sb, dep, depth+1)
	}
}

func renderGraph(graph model.Graph) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("graph: nodes=%d edges=%d", len(graph.Nodes), len(graph.Edges))))
	sb.WriteString("\n")
	for _, edge := range graph.Edges {
		fmt.Fprintf(&sb, "  %s -> %s\n", graph.Nodes[edge.From].Path, graph.Nodes[edge.To].Path)
	}
	return sb.String()
}
