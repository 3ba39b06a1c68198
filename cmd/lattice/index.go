package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/lattice/internal/contentcache"
	"github.com/jward/lattice/internal/extract"
	"github.com/jward/lattice/internal/scan"
	"github.com/jward/lattice/internal/store"
)

var (
	flagInclude []string
	flagRefs    []string
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a workspace into a snapshot database",
	Long: `Discovers projects (immediate subdirectories containing supported sources,
or the root itself), lists files via git ls-files with a filesystem-walk
fallback, extracts type definitions with tree-sitter, and writes the
snapshot to the SQLite database.

Project references default to fully open (every project can resolve types
from every other). Use --ref proj=dep to declare explicit edges instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringArrayVar(&flagInclude, "include", nil, "doublestar pattern filter, repeatable (e.g. 'src/**/*.go')")
	indexCmd.Flags().StringArrayVar(&flagRefs, "ref", nil, "project reference edge proj=dep, repeatable; default: all projects reference each other")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return err
	}

	projects, err := discoverProjects(targetDir)
	if err != nil {
		return err
	}

	ctx := context.Background()
	cache := contentcache.NewCache()
	fileCount, typeCount := 0, 0

	ids := make(map[string]int64, len(projects))
	for _, p := range projects {
		id, files, types, err := indexProject(ctx, s, cache, p)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", p.name, err)
		}
		ids[p.name] = id
		fileCount += files
		typeCount += types
	}

	if err := writeProjectRefs(s, ids); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d project(s), %d file(s), %d type(s) in %s\n",
		len(projects), fileCount, typeCount, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

type discoveredProject struct {
	name  string
	root  string
	paths []string
}

// discoverProjects treats each immediate subdirectory with supported
// sources as a project. When none qualify, the root itself is the single
// project.
func discoverProjects(root string) ([]discoveredProject, error) {
	scanner := scan.New(scan.WithIncludes(flagInclude...))

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var projects []discoveredProject
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		paths, err := scanner.ListFiles(dir)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			continue
		}
		projects = append(projects, discoveredProject{name: e.Name(), root: dir, paths: paths})
	}

	if len(projects) == 0 {
		paths, err := scanner.ListFiles(root)
		if err != nil {
			return nil, err
		}
		projects = append(projects, discoveredProject{
			name:  filepath.Base(root),
			root:  root,
			paths: paths,
		})
	}
	return projects, nil
}

// indexProject extracts one project's files and writes its rows.
func indexProject(ctx context.Context, s *store.Store, cache *contentcache.Cache, p discoveredProject) (int64, int, int, error) {
	projectID, err := s.InsertProject(&store.Project{Name: p.name, Root: p.root})
	if err != nil {
		return 0, 0, 0, err
	}

	results, err := extract.Files(ctx, p.paths, cache)
	if err != nil {
		// Individual file failures are reported but do not abort the index.
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", p.name, err)
	}

	typeCount := 0
	for _, ft := range results {
		fileID, err := s.InsertFile(&store.File{
			ProjectID: projectID,
			Path:      ft.Path,
			Language:  ft.Language,
			Hash:      fmt.Sprintf("%x", ft.Hash),
		})
		if err != nil {
			return 0, 0, 0, err
		}
		for _, decl := range ft.Decls {
			defID, err := s.InsertTypeDef(&store.TypeDef{
				ProjectID: projectID,
				FileID:    fileID,
				Name:      decl.Name,
				Qualified: decl.Qualified,
				Kind:      decl.Kind,
				StartLine: decl.StartLine,
				StartCol:  decl.StartCol,
				EndLine:   decl.EndLine,
				EndCol:    decl.EndCol,
			})
			if err != nil {
				return 0, 0, 0, err
			}
			for _, base := range decl.BaseNames {
				if err := s.InsertBaseType(defID, base); err != nil {
					return 0, 0, 0, err
				}
			}
			typeCount++
		}
	}
	return projectID, len(results), typeCount, nil
}

// writeProjectRefs records either the explicit --ref edges or, by default,
// the fully open workspace.
func writeProjectRefs(s *store.Store, ids map[string]int64) error {
	if len(flagRefs) > 0 {
		for _, edge := range flagRefs {
			from, to, ok := strings.Cut(edge, "=")
			if !ok {
				return fmt.Errorf("malformed --ref %q, want proj=dep", edge)
			}
			fromID, okFrom := ids[from]
			toID, okTo := ids[to]
			if !okFrom || !okTo {
				return fmt.Errorf("--ref %q names an unknown project", edge)
			}
			if err := s.InsertProjectRef(fromID, toID); err != nil {
				return err
			}
		}
		return nil
	}

	for _, fromID := range ids {
		for _, toID := range ids {
			if fromID == toID {
				continue
			}
			if err := s.InsertProjectRef(fromID, toID); err != nil {
				return err
			}
		}
	}
	return nil
}
