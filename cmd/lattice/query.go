package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	lattice "github.com/jward/lattice"
	"github.com/jward/lattice/internal/progress"
	"github.com/jward/lattice/internal/script"
	"github.com/jward/lattice/internal/store"
)

var (
	flagKind       string
	flagFilter     string
	flagTransitive bool
	flagGraph      bool
)

var refsCmd = &cobra.Command{
	Use:   "refs <name>",
	Short: "Find references to a symbol across the workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefs,
}

var derivedCmd = &cobra.Command{
	Use:   "derived <qualified-name>",
	Short: "Find types deriving from a base type",
	Args:  cobra.ExactArgs(1),
	RunE:  runDerived,
}

func init() {
	refsCmd.Flags().StringVar(&flagKind, "kind", "", "entity kind hint (type, function, ...)")
	refsCmd.Flags().StringVar(&flagFilter, "filter", "", "Risor predicate over file/line/col/context, e.g. '!strings.has_suffix(file, \"_test.go\")'")

	derivedCmd.Flags().BoolVar(&flagTransitive, "transitive", false, "include indirect derivations")
	derivedCmd.Flags().BoolVar(&flagGraph, "graph", false, "render the derived-type subgraph as a tree")
}

// openWorkspace loads the snapshot workspace for query commands.
func openWorkspace(opts ...store.WorkspaceOption) (*store.Workspace, func(), error) {
	repoRoot := findRepoRoot(mustGetwd())
	dbPath := resolveDBPath(repoRoot)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil, fmt.Errorf("no index at %s, run 'lattice index' first", dbPath)
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	ws, err := s.LoadWorkspace(opts...)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return ws, func() { s.Close() }, nil
}

func runRefs(cmd *cobra.Command, args []string) error {
	start := time.Now()

	var opts []store.WorkspaceOption
	if flagFilter != "" {
		opts = append(opts, store.WithSearchFilter(script.NewFilter(flagFilter)))
	}
	ws, closeWS, err := openWorkspace(opts...)
	if err != nil {
		return err
	}
	defer closeWS()

	finder := lattice.NewFinder(ws, lattice.WithNotifier(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	}))

	entity := &lattice.Entity{Name: args[0], Kind: flagKind}
	monitor := progress.NewMonitor()

	var (
		mu    sync.Mutex
		files []*lattice.SearchedFile
	)
	err = finder.FindReferences(context.Background(), entity, monitor, func(sf *lattice.SearchedFile) {
		mu.Lock()
		files = append(files, sf)
		mu.Unlock()
	})
	if err != nil {
		return err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	refCount := 0
	for _, sf := range files {
		refCount += len(sf.References)
	}
	fmt.Fprintf(os.Stderr, "Found %d reference(s) in %d file(s) in %s\n",
		refCount, len(files), time.Since(start).Round(time.Millisecond))

	return outputReferences(os.Stdout, files)
}

func runDerived(cmd *cobra.Command, args []string) error {
	ws, closeWS, err := openWorkspace()
	if err != nil {
		return err
	}
	defer closeWS()

	base := findTypeDefinition(ws, args[0])
	if base == nil {
		return fmt.Errorf("no type definition named %q in the index", args[0])
	}

	query := lattice.NewDerivedTypeQuery(ws)

	if flagGraph {
		node := query.BuildDerivedTypesGraph(base)
		return outputGraph(os.Stdout, node)
	}

	derived := query.FindDerivedTypes(base, flagTransitive)
	return outputTypeDefs(os.Stdout, derived)
}

// findTypeDefinition locates a definition by qualified name across all
// loaded compilations.
func findTypeDefinition(ws lattice.Workspace, qualified string) *lattice.TypeDefinition {
	for _, p := range ws.Projects() {
		content := p.Content()
		if content == nil {
			continue
		}
		for _, def := range content.Compilation().TypeDefinitions() {
			if def.Name == qualified {
				return def
			}
		}
	}
	return nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
