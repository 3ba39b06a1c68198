package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	lattice "github.com/jward/lattice"
)

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("invalid format %q, want json or text", format)
}

// CLIReference is the JSON shape of one reference occurrence.
type CLIReference struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Context string `json:"context,omitempty"`
}

// CLIFile is the JSON shape of one matched file.
type CLIFile struct {
	Path       string         `json:"path"`
	References []CLIReference `json:"references"`
}

// CLITypeDef is the JSON shape of one derived-type listing entry.
type CLITypeDef struct {
	Qualified string `json:"qualified"`
	Kind      string `json:"kind"`
	Module    string `json:"module"`
	Line      int    `json:"line"`
}

// CLINode is the JSON shape of one node in a derived-types tree.
type CLINode struct {
	Qualified string    `json:"qualified"`
	Kind      string    `json:"kind"`
	Module    string    `json:"module"`
	Derived   []CLINode `json:"derived,omitempty"`
}

func outputReferences(w io.Writer, files []*lattice.SearchedFile) error {
	if flagFormat == "json" {
		out := make([]CLIFile, 0, len(files))
		for _, sf := range files {
			cf := CLIFile{Path: sf.Path, References: make([]CLIReference, 0, len(sf.References))}
			for _, ref := range sf.References {
				cf.References = append(cf.References, CLIReference{
					Line: ref.StartLine, Col: ref.StartCol, Context: ref.Context,
				})
			}
			out = append(out, cf)
		}
		return writeJSON(w, out)
	}

	for _, sf := range files {
		for _, ref := range sf.References {
			fmt.Fprintf(w, "%s:%d:%d: %s\n", sf.Path, ref.StartLine, ref.StartCol, ref.Context)
		}
	}
	return nil
}

func outputTypeDefs(w io.Writer, defs []*lattice.TypeDefinition) error {
	if flagFormat == "json" {
		out := make([]CLITypeDef, 0, len(defs))
		for _, def := range defs {
			out = append(out, CLITypeDef{
				Qualified: def.Name, Kind: def.Kind, Module: def.Module,
				Line: def.Loc.StartLine,
			})
		}
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "QUALIFIED\tKIND\tMODULE\tLINE")
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", def.Name, def.Kind, def.Module, def.Loc.StartLine)
	}
	return tw.Flush()
}

func outputGraph(w io.Writer, node *lattice.TypeGraphNode) error {
	if flagFormat == "json" {
		return writeJSON(w, buildCLINode(node, map[lattice.TypeKey]bool{}))
	}
	printTree(w, node, 0, map[lattice.TypeKey]bool{})
	return nil
}

// buildCLINode renders the derived side of the graph, guarding against
// cycles.
func buildCLINode(node *lattice.TypeGraphNode, seen map[lattice.TypeKey]bool) CLINode {
	def := node.Definition()
	out := CLINode{Qualified: def.Name, Kind: def.Kind, Module: def.Module}
	if seen[node.Key()] {
		return out
	}
	seen[node.Key()] = true
	for _, d := range node.DerivedTypes() {
		out.Derived = append(out.Derived, buildCLINode(d, seen))
	}
	return out
}

func printTree(w io.Writer, node *lattice.TypeGraphNode, depth int, seen map[lattice.TypeKey]bool) {
	def := node.Definition()
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "%s (%s, %s)\n", def.Name, def.Kind, def.Module)
	if seen[node.Key()] {
		return
	}
	seen[node.Key()] = true
	for _, d := range node.DerivedTypes() {
		printTree(w, d, depth+1, seen)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
