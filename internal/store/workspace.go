package store

import (
	"fmt"
	"strings"

	lattice "github.com/jward/lattice"
	"github.com/jward/lattice/internal/script"
	"github.com/jward/lattice/internal/textsearch"
)

// Workspace is a loaded snapshot exposed through the lattice collaborator
// interfaces. Type definitions are materialized once; base-type names are
// resolved against the projects visible to each declaring project.
type Workspace struct {
	projects []*wsProject
	filter   *script.Filter
}

// WorkspaceOption configures a loaded Workspace.
type WorkspaceOption func(*Workspace)

// WithSearchFilter applies a Risor occurrence filter to every project
// search the workspace creates.
func WithSearchFilter(f *script.Filter) WorkspaceOption {
	return func(w *Workspace) {
		w.filter = f
	}
}

type wsProject struct {
	ws    *Workspace
	name  string
	paths []string // source files, ordered
	defs  []*lattice.TypeDefinition

	// visible is the set of project names whose types this project can
	// resolve: itself plus its transitive references.
	visible map[string]bool
}

// LoadWorkspace materializes the snapshot into a Workspace.
//
// Base-type resolution per declaring definition: first the base name
// qualified with the definition's own package, then the name as written,
// then a unique unqualified match across visible projects. A name that
// resolves nowhere stays an unresolved TypeRef, which graph building and
// derivation checks skip.
func (s *Store) LoadWorkspace(opts ...WorkspaceOption) (*Workspace, error) {
	ws := &Workspace{}
	for _, opt := range opts {
		opt(ws)
	}

	rows, err := s.Projects()
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	refs, err := s.ProjectRefs()
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}

	byID := make(map[int64]*wsProject, len(rows))
	type defRecord struct {
		def       *lattice.TypeDefinition
		baseNames []string
		project   *wsProject
	}
	var records []defRecord

	for _, row := range rows {
		p := &wsProject{ws: ws, name: row.Name}
		p.visible = visibleProjects(row.ID, rows, refs)
		byID[row.ID] = p
		ws.projects = append(ws.projects, p)

		files, err := s.FilesByProject(row.ID)
		if err != nil {
			return nil, fmt.Errorf("load workspace: %w", err)
		}
		for _, f := range files {
			p.paths = append(p.paths, f.Path)
		}

		defs, err := s.TypeDefsByProject(row.ID)
		if err != nil {
			return nil, fmt.Errorf("load workspace: %w", err)
		}
		for _, d := range defs {
			def := &lattice.TypeDefinition{
				Module: row.Name,
				Name:   d.Qualified,
				Kind:   d.Kind,
				Loc: lattice.Location{
					StartLine: d.StartLine, StartCol: d.StartCol,
					EndLine: d.EndLine, EndCol: d.EndCol,
				},
			}
			baseNames, err := s.BaseTypesByDef(d.ID)
			if err != nil {
				return nil, fmt.Errorf("load workspace: %w", err)
			}
			p.defs = append(p.defs, def)
			records = append(records, defRecord{def: def, baseNames: baseNames, project: p})
		}
	}

	// All definitions exist; now wire base refs across projects.
	for _, rec := range records {
		for _, baseName := range rec.baseNames {
			rec.def.Bases = append(rec.def.Bases, lattice.TypeRef{
				Name: baseName,
				Def:  ws.resolveBase(rec.project, rec.def, baseName),
			})
		}
	}

	return ws, nil
}

// visibleProjects returns the names reachable from projectID over the
// reference edges, including the project itself.
func visibleProjects(projectID int64, rows []*Project, refs map[int64][]int64) map[string]bool {
	nameByID := make(map[int64]string, len(rows))
	for _, r := range rows {
		nameByID[r.ID] = r.Name
	}

	visible := map[string]bool{nameByID[projectID]: true}
	queue := []int64{projectID}
	seen := map[int64]bool{projectID: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range refs[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			visible[nameByID[next]] = true
			queue = append(queue, next)
		}
	}
	return visible
}

// resolveBase finds the definition a declared base name refers to, or nil.
func (ws *Workspace) resolveBase(from *wsProject, decl *lattice.TypeDefinition, baseName string) *lattice.TypeDefinition {
	// Same-package shorthand: "Base" declared in package pkg means "pkg.Base".
	if i := strings.LastIndex(decl.Name, "."); i > 0 && !strings.Contains(baseName, ".") {
		if def := ws.lookupQualified(from, decl.Name[:i]+"."+baseName); def != nil {
			return def
		}
	}
	if def := ws.lookupQualified(from, baseName); def != nil {
		return def
	}
	return ws.lookupUnqualified(from, baseName)
}

// lookupQualified finds a visible definition by exact qualified name.
func (ws *Workspace) lookupQualified(from *wsProject, qualified string) *lattice.TypeDefinition {
	for _, p := range ws.projects {
		if !from.visible[p.name] {
			continue
		}
		for _, def := range p.defs {
			if def.Name == qualified {
				return def
			}
		}
	}
	return nil
}

// lookupUnqualified resolves a bare name only when exactly one visible
// definition carries it; ambiguity stays unresolved.
func (ws *Workspace) lookupUnqualified(from *wsProject, name string) *lattice.TypeDefinition {
	var found *lattice.TypeDefinition
	suffix := "." + name
	for _, p := range ws.projects {
		if !from.visible[p.name] {
			continue
		}
		for _, def := range p.defs {
			if !strings.HasSuffix(def.Name, suffix) {
				continue
			}
			if found != nil && found != def {
				return nil
			}
			found = def
		}
	}
	return found
}

// Projects implements lattice.Workspace.
func (ws *Workspace) Projects() []lattice.Project {
	out := make([]lattice.Project, len(ws.projects))
	for i, p := range ws.projects {
		out[i] = p
	}
	return out
}

// Ready implements lattice.Workspace. A materialized snapshot is always
// fully loaded.
func (ws *Workspace) Ready() bool {
	return true
}

func (p *wsProject) Name() string {
	return p.name
}

// Content implements lattice.Project. A project with neither files nor type
// definitions contributes nothing searchable.
func (p *wsProject) Content() lattice.ProjectContent {
	if len(p.paths) == 0 && len(p.defs) == 0 {
		return nil
	}
	return p
}

// Compilation implements lattice.ProjectContent.
func (p *wsProject) Compilation() lattice.Compilation {
	return p
}

// CreateSymbolSearch implements lattice.ProjectContent. Projects without
// source files decline.
func (p *wsProject) CreateSymbolSearch(entity *lattice.Entity) lattice.SymbolSearch {
	search := textsearch.NewProjectSearch(p.name, entity.Name, p.paths,
		textsearch.WithFilter(p.ws.filter))
	if search == nil {
		return nil
	}
	return search
}

// TypeDefinitions implements lattice.Compilation.
func (p *wsProject) TypeDefinitions() []*lattice.TypeDefinition {
	return p.defs
}

// ImportType implements lattice.Compilation: a definition is importable
// when its declaring project is visible from this one.
func (p *wsProject) ImportType(def *lattice.TypeDefinition) (*lattice.TypeDefinition, bool) {
	if def == nil || !p.visible[def.Module] {
		return nil, false
	}
	for _, other := range p.ws.projects {
		if other.name != def.Module {
			continue
		}
		for _, d := range other.defs {
			if d.Key() == def.Key() {
				return d, true
			}
		}
	}
	return nil, false
}
