package render

import (
	"fmt"
	"strings"

	"dexlens/internal/callgraph"
)

// Call-edge categories, keyed by Dalvik invoke-* mnemonic. A Dalvik invoke-*
// already names its dispatch kind directly in the opcode, so this is a
// straight lookup rather than a data-flow reconstruction.
const (
	ProvStatic    = "invoke-static"
	ProvDirect    = "invoke-direct"
	ProvVirtual   = "invoke-virtual"
	ProvSuper     = "invoke-super"
	ProvInterface = "invoke-interface"
	ProvUnknown   = "unknown"
)

// edgeColor returns the DOT color for a call edge's invoke kind.
func edgeColor(kind string, t Theme) string {
	switch kind {
	case ProvStatic, ProvDirect:
		return t.EdgeDirect
	case ProvVirtual:
		return t.EdgeDispatch
	case ProvSuper:
		return t.EdgeSuper
	case ProvInterface:
		return t.EdgeInterface
	default:
		return t.EdgeUnresolved
	}
}

// edgeStyle returns dot style attributes for an invoke kind.
func edgeStyle(kind string) string {
	switch kind {
	case ProvVirtual, ProvInterface:
		return "dotted"
	case ProvUnknown:
		return "dashed"
	default:
		return "solid"
	}
}

// CallgraphDOT renders a callgraph from disassembled methods as DOT. Every
// call edge with a non-empty Target is drawn; a target that is not one of
// the rendered functions is drawn as a plaintext external node.
// maxNodes limits the number of function nodes rendered (0 = all).
func CallgraphDOT(funcs []callgraph.FuncInfo, title string, t Theme, maxNodes int) string {
	funcSet := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		funcSet[f.Name] = true
	}

	type edgeKey struct {
		from, to, kind string
	}
	dedupEdges := make(map[edgeKey]int)
	for _, f := range funcs {
		for _, e := range f.CallEdges {
			if e.Target == "" {
				continue
			}
			dedupEdges[edgeKey{f.Name, e.Target, e.Kind}]++
		}
	}

	refNodes := make(map[string]bool)
	for k := range dedupEdges {
		refNodes[k.from] = true
		refNodes[k.to] = true
	}

	var renderFuncs []callgraph.FuncInfo
	for _, f := range funcs {
		if refNodes[f.Name] {
			renderFuncs = append(renderFuncs, f)
		}
	}
	if maxNodes > 0 && len(renderFuncs) > maxNodes {
		renderFuncs = renderFuncs[:maxNodes]
		funcSet = make(map[string]bool, len(renderFuncs))
		for _, f := range renderFuncs {
			funcSet[f.Name] = true
		}
	}

	externalNodes := make(map[string]bool)
	for k := range dedupEdges {
		if !funcSet[k.from] {
			continue
		}
		if !funcSet[k.to] {
			externalNodes[k.to] = true
		}
	}

	ownerFuncs := make(map[string][]callgraph.FuncInfo)
	var noOwner []callgraph.FuncInfo
	for _, f := range renderFuncs {
		owner := ownerOf(f.Name)
		if owner != f.Name {
			ownerFuncs[owner] = append(ownerFuncs[owner], f)
		} else {
			noOwner = append(noOwner, f)
		}
	}

	var b strings.Builder
	b.WriteString("digraph callgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  compound=true;\n")
	b.WriteString("  splines=true;\n")
	b.WriteString("  nodesep=0.4;\n")
	b.WriteString("  ranksep=0.6;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=9, fontcolor=%q, height=0.3, margin=\"0.12,0.06\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee];\n")
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=t;\n  labeljust=l;\n")
		fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.TextColor, dotEscape(title))
	}
	b.WriteByte('\n')

	for owner, funcsInOwner := range ownerFuncs {
		if len(funcsInOwner) < 2 {
			noOwner = append(noOwner, funcsInOwner...)
			continue
		}
		clusterID := "cluster_" + dotID(owner)
		fmt.Fprintf(&b, "  subgraph %s {\n", clusterID)
		fmt.Fprintf(&b, "    label=<<font point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.ClusterLabel, dotEscape(owner))
		fmt.Fprintf(&b, "    style=dotted; color=%q; penwidth=0.3;\n", t.ClusterBorder)
		for _, f := range funcsInOwner {
			id := dotID(f.Name)
			label := truncLabel(stripMethodName(f.Name, owner), 50)
			fmt.Fprintf(&b, "    %s [label=%q];\n", id, label)
		}
		fmt.Fprintf(&b, "  }\n")
	}

	for _, f := range noOwner {
		id := dotID(f.Name)
		label := truncLabel(f.Name, 60)
		fmt.Fprintf(&b, "  %s [label=%q];\n", id, label)
	}
	b.WriteByte('\n')

	for name := range externalNodes {
		id := dotID(name)
		label := truncLabel(name, 50)
		fmt.Fprintf(&b, "  %s [label=%q, shape=plaintext, style=\"\", fillcolor=none, fontcolor=%q, fontsize=8];\n",
			id, label, t.ExternalText)
	}
	b.WriteByte('\n')

	for k, count := range dedupEdges {
		if !funcSet[k.from] {
			continue
		}
		fromID := dotID(k.from)
		toID := dotID(k.to)
		color := edgeColor(k.kind, t)
		style := edgeStyle(k.kind)

		attrs := fmt.Sprintf("color=%q, style=%q", color, style)
		if count > 1 {
			attrs += fmt.Sprintf(", penwidth=%.1f", 0.5+float64(count)*0.1)
			if count > 2 {
				attrs += fmt.Sprintf(", label=<<font point-size=\"7\" color=\"%s\">%dx</font>>", color, count)
			}
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", fromID, toID, attrs)
	}

	b.WriteString("}\n")
	return b.String()
}

// CallgraphStats computes summary statistics over a call graph.
type CallgraphStats struct {
	TotalFunctions int
	TotalEdges     int
	ProvCounts     map[string]int
	UniqueOwners   int
	TopCallers     []NameCount
	TopCallees     []NameCount
	TopOwners      []NameCount
}

// NameCount pairs a name with a count.
type NameCount struct {
	Name  string
	Count int
}

// ComputeStats computes callgraph statistics from disassembled functions.
func ComputeStats(funcs []callgraph.FuncInfo) CallgraphStats {
	stats := CallgraphStats{
		TotalFunctions: len(funcs),
		ProvCounts:     make(map[string]int),
	}

	callerCount := make(map[string]int)
	calleeCount := make(map[string]int)
	ownerCount := make(map[string]int)

	for _, f := range funcs {
		ownerCount[ownerOf(f.Name)]++
		for _, e := range f.CallEdges {
			stats.TotalEdges++
			stats.ProvCounts[e.Kind]++
			callerCount[f.Name]++
			if e.Target != "" {
				calleeCount[e.Target]++
			}
		}
	}

	stats.UniqueOwners = len(ownerCount)
	stats.TopCallers = topNMap(callerCount, 20)
	stats.TopCallees = topNMap(calleeCount, 20)
	stats.TopOwners = topNMap(ownerCount, 30)
	return stats
}

// topNMap returns the top N entries from a map, sorted descending.
func topNMap(m map[string]int, n int) []NameCount {
	entries := make([]NameCount, 0, len(m))
	for name, count := range m {
		entries = append(entries, NameCount{name, count})
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Count > entries[i].Count {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
