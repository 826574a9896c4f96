package retrieval

import (
	"fmt"
	"strings"

	"github.com/solanumlabs/codelens/internal/store"
	"github.com/solanumlabs/codelens/pkg/types"
)

// RenderSymbol renders a single symbol record in either format. Both
// branches read the same fields, so a property-based test can assert
// the two renderings describe the same symbol regardless of layout.
func RenderSymbol(sym *types.Symbol, format types.OutputFormat) string {
	if format == types.FormatMarkdown {
		var b strings.Builder
		fmt.Fprintf(&b, "### %s `%s`\n\n", sym.Kind, sym.QualifiedName)
		fmt.Fprintf(&b, "```\n%s\n```\n\n", sym.Signature)
		fmt.Fprintf(&b, "- location: %s:%d\n", sym.Location.File, sym.Location.StartLine)
		return b.String()
	}
	return fmt.Sprintf("%s\t%s\t%s:%d", sym.Kind, sym.QualifiedName, sym.Location.File, sym.Location.StartLine)
}

// RenderSearchResults renders a list of search hits.
func RenderSearchResults(results []types.SearchResult, format types.OutputFormat) string {
	if format == types.FormatMarkdown {
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d matches\n\n", len(results))
		for _, r := range results {
			fmt.Fprintf(&b, "- `%s` (%s, score %.3f)\n", r.SymbolID, r.Source, r.Score)
		}
		return b.String()
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%s\t%s\t%.3f\n", r.SymbolID, r.Source, r.Score)
	}
	return b.String()
}

// RenderReferenceGroups renders find_references output.
func RenderReferenceGroups(groups []ReferenceGroup, format types.OutputFormat) string {
	if format == types.FormatMarkdown {
		var b strings.Builder
		for _, g := range groups {
			fmt.Fprintf(&b, "### %s\n\n", g.File)
			for _, r := range g.References {
				fmt.Fprintf(&b, "- line %d: %s (`%s`)\n", r.Line, r.Kind, r.Snippet)
			}
			b.WriteString("\n")
		}
		return b.String()
	}
	var b strings.Builder
	for _, g := range groups {
		for _, r := range g.References {
			fmt.Fprintf(&b, "%s\t%d\t%s\t%s\n", g.File, r.Line, r.Kind, r.Snippet)
		}
	}
	return b.String()
}

// RenderCallPaths renders trace_calls output.
func RenderCallPaths(paths []store.CallPath, format types.OutputFormat) string {
	if format == types.FormatMarkdown {
		var b strings.Builder
		for _, p := range paths {
			fmt.Fprintf(&b, "- (depth %d) `%s` -> `%s`\n", p.Depth, p.CallerName, p.CalleeName)
		}
		return b.String()
	}
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", p.Depth, p.CallerName, p.CalleeName)
	}
	return b.String()
}

// RenderRelatedContext renders get_related_context output. Signature
// stands in for "source" since the store keeps no raw function body
// text, only the declaration signature and its location.
func RenderRelatedContext(ctx *RelatedContext, format types.OutputFormat) string {
	if format == types.FormatMarkdown {
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n```\n%s\n```\n\n", ctx.Symbol.QualifiedName, ctx.Symbol.Signature)
		if len(ctx.Callees) > 0 {
			b.WriteString("**Calls:**\n\n")
			for _, c := range ctx.Callees {
				fmt.Fprintf(&b, "- `%s`\n", c.CalleeName)
			}
			b.WriteString("\n")
		}
		if len(ctx.TypeEdges) > 0 {
			b.WriteString("**Related types:**\n\n")
			for _, t := range ctx.TypeEdges {
				fmt.Fprintf(&b, "- %s `%s`\n", t.Kind, t.TargetName)
			}
		}
		return b.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%s\n", ctx.Symbol.QualifiedName, ctx.Symbol.Signature)
	for _, c := range ctx.Callees {
		fmt.Fprintf(&b, "call\t%s\n", c.CalleeName)
	}
	for _, t := range ctx.TypeEdges {
		fmt.Fprintf(&b, "%s\t%s\n", t.Kind, t.TargetName)
	}
	return b.String()
}

// RenderArchitectureOverview renders get_architecture_overview output.
func RenderArchitectureOverview(ov *ArchitectureOverview, format types.OutputFormat) string {
	if format == types.FormatMarkdown {
		var b strings.Builder
		b.WriteString("# Architecture overview\n\n")
		if ov.Repo.IsRepo {
			fmt.Fprintf(&b, "Branch `%s` at `%s`", ov.Repo.Branch, ov.Repo.CommitHash)
			if ov.Repo.Dirty {
				b.WriteString(" (dirty working tree)")
			}
			b.WriteString("\n\n")
		}
		if len(ov.EntryPoints) > 0 {
			b.WriteString("**Entry points:** ")
			b.WriteString(strings.Join(ov.EntryPoints, ", "))
			b.WriteString("\n\n")
		}
		for _, m := range ov.Modules {
			fmt.Fprintf(&b, "## %s (%d files)\n\n", m.Name, m.Files)
			if name := moduleNarrative(m.Name); name != "" {
				fmt.Fprintf(&b, "%s\n\n", name)
			}
			if len(m.TopExports) > 0 {
				b.WriteString("Top exports:\n")
				for i, e := range m.TopExports {
					if i >= 5 {
						break
					}
					fmt.Fprintf(&b, "- `%s` (%d references)\n", e.Name, e.Score)
				}
				b.WriteString("\n")
			}
			if len(m.ValueDependencies) > 0 {
				fmt.Fprintf(&b, "Depends on: %s\n\n", strings.Join(m.ValueDependencies, ", "))
			}
			if len(m.TypeDependencies) > 0 {
				fmt.Fprintf(&b, "Type-only dependencies: %s\n\n", strings.Join(m.TypeDependencies, ", "))
			}
		}
		return b.String()
	}
	var b strings.Builder
	for _, m := range ov.Modules {
		fmt.Fprintf(&b, "%s\t%d files\n", m.Name, m.Files)
		for i, e := range m.TopExports {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  %s\t%d\n", e.Name, e.Score)
		}
		if len(m.ValueDependencies) > 0 {
			fmt.Fprintf(&b, "  deps: %s\n", strings.Join(m.ValueDependencies, ", "))
		}
		if len(m.TypeDependencies) > 0 {
			fmt.Fprintf(&b, "  type-deps: %s\n", strings.Join(m.TypeDependencies, ", "))
		}
	}
	return b.String()
}

// moduleNarrative supplies a one-line description for conventionally
// named top-level directories, when recognized.
func moduleNarrative(name string) string {
	switch name {
	case "cmd":
		return "Command-line entry points."
	case "internal":
		return "Private application packages, not importable by other modules."
	case "pkg":
		return "Packages intended for use outside this module."
	case "api", "server":
		return "Network-facing service layer."
	case "store", "db", "database":
		return "Persistence layer."
	default:
		return ""
	}
}
