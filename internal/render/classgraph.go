package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dexlens/internal/callgraph"
)

// ownerOf returns the declaring class descriptor of a method FQDN
// ("Lpkg/Name;->method(...)T" -> "Lpkg/Name;").
func ownerOf(fqdn string) string {
	if i := strings.Index(fqdn, "->"); i >= 0 {
		return fqdn[:i]
	}
	return fqdn
}

// ClassgraphDOT renders a class-level call graph where each declaring class
// is one node and edges represent aggregated inter-class calls. maxNodes
// limits rendered classes (0 = all). Intra-class calls are not drawn.
func ClassgraphDOT(funcs []callgraph.FuncInfo, title string, t Theme, maxNodes int) string {
	funcOwner := make(map[string]string, len(funcs))
	ownerMethodCount := make(map[string]int)
	for _, f := range funcs {
		owner := ownerOf(f.Name)
		funcOwner[f.Name] = owner
		ownerMethodCount[owner]++
	}

	type classEdge struct {
		from, to string
	}
	classCounts := make(map[classEdge]int)
	for _, f := range funcs {
		srcOwner := funcOwner[f.Name]
		for _, e := range f.CallEdges {
			if e.Target == "" {
				continue
			}
			dstOwner := ownerOf(e.Target)
			if srcOwner == dstOwner {
				continue
			}
			classCounts[classEdge{srcOwner, dstOwner}]++
		}
	}

	classInvolvement := make(map[string]int)
	for ce, count := range classCounts {
		classInvolvement[ce.from] += count
		classInvolvement[ce.to] += count
	}

	type rankedClass struct {
		name        string
		involvement int
	}
	ranked := make([]rankedClass, 0, len(classInvolvement))
	for name, inv := range classInvolvement {
		ranked = append(ranked, rankedClass{name, inv})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].involvement != ranked[j].involvement {
			return ranked[i].involvement > ranked[j].involvement
		}
		return ranked[i].name < ranked[j].name
	})

	renderSet := make(map[string]bool)
	limit := len(ranked)
	if maxNodes > 0 && limit > maxNodes {
		limit = maxNodes
	}
	for _, rc := range ranked[:limit] {
		renderSet[rc.name] = true
	}

	var b strings.Builder
	b.WriteString("digraph classgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  splines=true;\n")
	b.WriteString("  nodesep=0.5;\n")
	b.WriteString("  ranksep=0.8;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=\"filled,rounded\", fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=10, fontcolor=%q, height=0.4, margin=\"0.15,0.08\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee, color=%q];\n", t.EdgeDirect)
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=t;\n  labeljust=l;\n")
		fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.TextColor, dotEscape(title))
	}
	b.WriteByte('\n')

	maxMethods := 1
	for name := range renderSet {
		if c := ownerMethodCount[name]; c > maxMethods {
			maxMethods = c
		}
	}
	for _, rc := range ranked[:limit] {
		name := rc.name
		id := dotID(name)
		methods := ownerMethodCount[name]

		height := 0.4 + 0.3*math.Log2(float64(methods)+1)/math.Log2(float64(maxMethods)+1)

		htmlLabel := fmt.Sprintf("<<font point-size=\"10\">%s</font><br/><font point-size=\"7\" color=\"%s\">%d methods</font>>",
			dotEscape(name), t.ExternalText, methods)

		fmt.Fprintf(&b, "  %s [label=%s, height=%.2f];\n", id, htmlLabel, height)
	}
	b.WriteByte('\n')

	maxEdgeCount := 1
	for ce := range classCounts {
		if !renderSet[ce.from] || !renderSet[ce.to] {
			continue
		}
		if c := classCounts[classEdge{ce.from, ce.to}]; c > maxEdgeCount {
			maxEdgeCount = c
		}
	}

	for ce, count := range classCounts {
		if !renderSet[ce.from] || !renderSet[ce.to] {
			continue
		}
		fromID := dotID(ce.from)
		toID := dotID(ce.to)

		pw := 0.5 + 2.0*math.Log2(float64(count)+1)/math.Log2(float64(maxEdgeCount)+1)
		attrs := fmt.Sprintf("penwidth=%.1f", pw)
		if count > 1 {
			attrs += fmt.Sprintf(", label=<<font point-size=\"7\" color=\"%s\">%d</font>>",
				t.ExternalText, count)
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", fromID, toID, attrs)
	}

	b.WriteString("}\n")
	return b.String()
}
