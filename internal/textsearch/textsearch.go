// Package textsearch is the tree-sitter-backed search strategy: it matches
// identifier nodes against a symbol name, one project's files per unit.
package textsearch

import (
	"bytes"
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	lattice "github.com/jward/lattice"
	"github.com/jward/lattice/internal/lang"
	"github.com/jward/lattice/internal/script"
)

// ProjectSearch is a lattice.SymbolSearch over one project's files. Its
// work amount is the file count, so progress moves proportionally to files
// scanned.
type ProjectSearch struct {
	project string
	name    string
	paths   []string
	filter  *script.Filter
}

// Option configures a ProjectSearch.
type Option func(*ProjectSearch)

// WithFilter applies a Risor predicate to each occurrence before it is
// reported.
func WithFilter(f *script.Filter) Option {
	return func(s *ProjectSearch) {
		s.filter = f
	}
}

// NewProjectSearch creates a search for name across the given files.
// Returns nil when there are no files to scan, so the project declines
// cleanly.
func NewProjectSearch(project, name string, paths []string, opts ...Option) *ProjectSearch {
	if len(paths) == 0 {
		return nil
	}
	s := &ProjectSearch{project: project, name: name, paths: paths}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorkAmount returns the number of files the search will scan.
func (s *ProjectSearch) WorkAmount() int {
	return len(s.paths)
}

// FindReferences scans every file, emitting one SearchedFile per file with
// at least one match. The unit's own progress scope advances per file.
// Cancellation is checked between files.
func (s *ProjectSearch) FindReferences(ctx context.Context, args *lattice.SearchArgs, emit func(*lattice.SearchedFile)) error {
	for i, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		refs, err := matchFile(ctx, path, s.name, args.Files.Get)
		if err != nil {
			return fmt.Errorf("search %s: %w", s.project, err)
		}

		if s.filter != nil {
			kept := refs[:0]
			for _, ref := range refs {
				ok, err := s.filter.Allow(ctx, ref)
				if err != nil {
					return fmt.Errorf("search %s: %w", s.project, err)
				}
				if ok {
					kept = append(kept, ref)
				}
			}
			refs = kept
		}

		if len(refs) > 0 {
			emit(&lattice.SearchedFile{Path: path, References: refs})
		}
		if args.Monitor != nil {
			args.Monitor.SetFraction(float64(i+1) / float64(len(s.paths)))
		}
	}
	return nil
}

type readFunc func(path string) ([]byte, error)

// matchFile parses one file and collects identifier occurrences of name.
func matchFile(ctx context.Context, path, name string, read readFunc) ([]lattice.Reference, error) {
	language, ok := lang.LanguageForFile(path)
	if !ok {
		return nil, nil
	}
	grammar, ok := lang.GrammarForLanguage(language)
	if !ok {
		return nil, nil
	}

	content, err := read(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	lines := bytes.Split(content, []byte{'\n'})
	var refs []lattice.Reference
	collectMatches(tree.RootNode(), content, lines, path, name, &refs)
	return refs, nil
}

func collectMatches(n *sitter.Node, content []byte, lines [][]byte, path, name string, refs *[]lattice.Reference) {
	if lang.IsIdentifierNode(n.Type()) && n.Content(content) == name {
		line := int(n.StartPoint().Row)
		context := ""
		if line < len(lines) {
			context = string(bytes.TrimSpace(lines[line]))
		}
		*refs = append(*refs, lattice.Reference{
			Location: lattice.Location{
				File:      path,
				StartLine: line + 1,
				StartCol:  int(n.StartPoint().Column),
				EndLine:   int(n.EndPoint().Row) + 1,
				EndCol:    int(n.EndPoint().Column),
			},
			Context: context,
		})
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectMatches(n.NamedChild(i), content, lines, path, name, refs)
	}
}
