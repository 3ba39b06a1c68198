// Package extract parses source files with tree-sitter and pulls out type
// definitions and their declared base types. Extraction is syntactic: base
// types are recorded as written, and resolved against the workspace later.
//
// Supported for extraction: Go (struct/interface embedding), Java
// (extends/implements), Python (class bases). Other languages parse but
// yield no type declarations.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lattice/internal/contentcache"
	"github.com/jward/lattice/internal/lang"
)

// TypeDecl is one extracted type declaration.
type TypeDecl struct {
	Name      string // declared name, unqualified
	Qualified string // package-qualified name
	Kind      string // "struct", "interface", "class"
	BaseNames []string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// FileTypes is the extraction result for one file.
type FileTypes struct {
	Path     string
	Language string
	Hash     uint64
	Decls    []TypeDecl
}

// File extracts type declarations from a single file, reading content
// through the cache.
func File(ctx context.Context, path string, cache *contentcache.Cache) (*FileTypes, error) {
	language, ok := lang.LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("extract %s: unsupported extension", path)
	}
	grammar, ok := lang.GrammarForLanguage(language)
	if !ok {
		return nil, fmt.Errorf("extract %s: no grammar for %s", path, language)
	}

	content, err := cache.Get(path)
	if err != nil {
		return nil, err
	}
	hash, err := cache.Hash(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: parse: %w", path, err)
	}
	defer tree.Close()

	ft := &FileTypes{Path: path, Language: language, Hash: hash}
	root := tree.RootNode()
	pkg := packageName(language, path, root, content)

	switch language {
	case "go":
		extractGo(root, content, pkg, ft)
	case "java":
		extractJava(root, content, pkg, ft)
	case "python":
		extractPython(root, content, pkg, ft)
	}
	return ft, nil
}

// Files extracts every path concurrently with a worker pool, reading
// through the shared cache. Errors on individual files are collected; the
// first one is returned wrapped after all workers finish, alongside the
// successful results.
func Files(ctx context.Context, paths []string, cache *contentcache.Cache) ([]*FileTypes, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	numWorkers := min(runtime.NumCPU(), len(paths))

	workCh := make(chan string, len(paths))
	for _, p := range paths {
		workCh <- p
	}
	close(workCh)

	type result struct {
		ft  *FileTypes
		err error
	}
	resultCh := make(chan result, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker gets its own parser via File; only the cache is shared.
			for path := range workCh {
				ft, err := File(ctx, path, cache)
				resultCh <- result{ft: ft, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var out []*FileTypes
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, res.err)
			continue
		}
		out = append(out, res.ft)
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("extraction had %d error(s): %w", len(errs), errs[0])
	}
	return out, nil
}

// packageName returns the package/module qualifier for declarations in the
// file.
func packageName(language, path string, root *sitter.Node, content []byte) string {
	switch language {
	case "go":
		for i := 0; i < int(root.NamedChildCount()); i++ {
			n := root.NamedChild(i)
			if n.Type() == "package_clause" && n.NamedChildCount() > 0 {
				return n.NamedChild(0).Content(content)
			}
		}
	case "java":
		for i := 0; i < int(root.NamedChildCount()); i++ {
			n := root.NamedChild(i)
			if n.Type() == "package_declaration" && n.NamedChildCount() > 0 {
				return n.NamedChild(0).Content(content)
			}
		}
	case "python":
		return strings.TrimSuffix(filepath.Base(path), ".py")
	}
	return ""
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func span(n *sitter.Node) (int, int, int, int) {
	return int(n.StartPoint().Row) + 1, int(n.StartPoint().Column),
		int(n.EndPoint().Row) + 1, int(n.EndPoint().Column)
}

// extractGo walks type_declaration nodes. Struct embedding (a field with no
// name) and interface embedding both count as base types.
func extractGo(root *sitter.Node, content []byte, pkg string, ft *FileTypes) {
	walk(root, func(n *sitter.Node) {
		if n.Type() != "type_spec" {
			return
		}
		nameNode := n.ChildByFieldName("name")
		typeNode := n.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			return
		}

		decl := TypeDecl{
			Name:      nameNode.Content(content),
			Qualified: qualify(pkg, nameNode.Content(content)),
		}
		decl.StartLine, decl.StartCol, decl.EndLine, decl.EndCol = span(n)

		switch typeNode.Type() {
		case "struct_type":
			decl.Kind = "struct"
			decl.BaseNames = goEmbeddedFields(typeNode, content)
		case "interface_type":
			decl.Kind = "interface"
			decl.BaseNames = goEmbeddedInterfaces(typeNode, content)
		default:
			decl.Kind = "type"
		}
		ft.Decls = append(ft.Decls, decl)
	})
}

// goEmbeddedFields collects embedded (unnamed) struct fields.
func goEmbeddedFields(structType *sitter.Node, content []byte) []string {
	var bases []string
	walk(structType, func(n *sitter.Node) {
		if n.Type() != "field_declaration" {
			return
		}
		if n.ChildByFieldName("name") != nil {
			return // named field, not embedding
		}
		typeNode := n.ChildByFieldName("type")
		if typeNode == nil {
			return
		}
		bases = append(bases, cleanTypeName(typeNode.Content(content)))
	})
	return bases
}

// goEmbeddedInterfaces collects embedded interface names from an interface
// body.
func goEmbeddedInterfaces(ifaceType *sitter.Node, content []byte) []string {
	var bases []string
	for i := 0; i < int(ifaceType.NamedChildCount()); i++ {
		n := ifaceType.NamedChild(i)
		switch n.Type() {
		case "type_identifier", "qualified_type", "interface_type_name":
			bases = append(bases, cleanTypeName(n.Content(content)))
		}
	}
	return bases
}

// extractJava walks class and interface declarations, recording extends and
// implements clauses as base types.
func extractJava(root *sitter.Node, content []byte, pkg string, ft *FileTypes) {
	walk(root, func(n *sitter.Node) {
		var kind string
		switch n.Type() {
		case "class_declaration":
			kind = "class"
		case "interface_declaration":
			kind = "interface"
		default:
			return
		}
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return
		}

		decl := TypeDecl{
			Name:      nameNode.Content(content),
			Qualified: qualify(pkg, nameNode.Content(content)),
			Kind:      kind,
		}
		decl.StartLine, decl.StartCol, decl.EndLine, decl.EndCol = span(n)

		if sc := n.ChildByFieldName("superclass"); sc != nil {
			decl.BaseNames = append(decl.BaseNames, javaTypeNames(sc, content)...)
		}
		if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
			decl.BaseNames = append(decl.BaseNames, javaTypeNames(ifaces, content)...)
		}
		// extends on an interface_declaration lands in a child clause node.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "extends_interfaces" {
				decl.BaseNames = append(decl.BaseNames, javaTypeNames(c, content)...)
			}
		}
		ft.Decls = append(ft.Decls, decl)
	})
}

// javaTypeNames collects the type identifiers under an extends/implements
// clause.
func javaTypeNames(clause *sitter.Node, content []byte) []string {
	var names []string
	walk(clause, func(n *sitter.Node) {
		switch n.Type() {
		case "type_identifier", "scoped_type_identifier":
			// Skip nested identifiers inside a scoped one we already took.
			if p := n.Parent(); p != nil && p.Type() == "scoped_type_identifier" {
				return
			}
			names = append(names, cleanTypeName(n.Content(content)))
		}
	})
	return names
}

// extractPython walks class definitions, recording superclass arguments as
// base types.
func extractPython(root *sitter.Node, content []byte, pkg string, ft *FileTypes) {
	walk(root, func(n *sitter.Node) {
		if n.Type() != "class_definition" {
			return
		}
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return
		}

		decl := TypeDecl{
			Name:      nameNode.Content(content),
			Qualified: qualify(pkg, nameNode.Content(content)),
			Kind:      "class",
		}
		decl.StartLine, decl.StartCol, decl.EndLine, decl.EndCol = span(n)

		if supers := n.ChildByFieldName("superclasses"); supers != nil {
			for i := 0; i < int(supers.NamedChildCount()); i++ {
				arg := supers.NamedChild(i)
				switch arg.Type() {
				case "identifier", "attribute":
					decl.BaseNames = append(decl.BaseNames, cleanTypeName(arg.Content(content)))
				}
			}
		}
		ft.Decls = append(ft.Decls, decl)
	})
}

// cleanTypeName strips pointer and generic decoration from a declared base
// type so it can be matched against qualified names.
func cleanTypeName(name string) string {
	name = strings.TrimPrefix(name, "*")
	if i := strings.IndexAny(name, "[<"); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// walk visits every named node under n in document order, n included.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}
