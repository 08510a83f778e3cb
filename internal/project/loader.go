package project

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/leapstack-labs/docprop/internal/dag"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/leapstack-labs/docprop/internal/starlark"
	"golang.org/x/sync/errgroup"
)

// Options configures a project scan.
type Options struct {
	// Root is the project root; reported file paths are relative to it
	Root string
	// ModelsDir holds the declarations, absolute or relative to Root
	ModelsDir string
	// Env is exposed to description expressions as "env"
	Env string
	// Concurrency bounds parallel file parsing (default: NumCPU)
	Concurrency int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// parsedFile is the result of parsing one declaration file.
type parsedFile struct {
	model   *ModelDecl
	sources []*SourceDecl
}

// Load scans the models directory and builds the project graph.
// Every failure is wrapped with propagate.ErrGraphUnavailable.
func Load(ctx context.Context, opts Options) (*Project, error) {
	p, err := load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", propagate.ErrGraphUnavailable, err)
	}
	return p, nil
}

func load(ctx context.Context, opts Options) (*Project, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	modelsDir := opts.ModelsDir
	if !filepath.IsAbs(modelsDir) {
		modelsDir = filepath.Join(opts.Root, modelsDir)
	}
	info, err := os.Stat(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("models directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("models directory %s is not a directory", modelsDir)
	}

	files, err := discover(modelsDir)
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	// Results are stored by index so completion order does not matter.
	results := make([]parsedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, err := parseFile(opts.Root, modelsDir, path, opts.Env)
			if err != nil {
				return err
			}
			results[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p, err := assemble(results)
	if err != nil {
		return nil, err
	}
	p.Root = opts.Root
	p.ModelsDir = modelsDir

	logger.Debug("project loaded",
		"models_dir", modelsDir,
		"files", len(files),
		"entities", p.graph.Len(),
		"edges", p.graph.EdgeCount(),
	)
	return p, nil
}

// discover lists declaration files below dir in lexical order.
// Hidden directories are skipped.
func discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isDeclarationFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// isDeclarationFile reports whether a path is a model or sources file.
func isDeclarationFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".yml", ".yaml":
		return true
	}
	return false
}

func parseFile(root, modelsDir, path, env string) (parsedFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // declaration files come from the project tree
	if err != nil {
		return parsedFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	rel := relPath(root, path)
	if strings.EqualFold(filepath.Ext(path), ".sql") {
		m, err := parseModel(string(data), rel, modelsDir, path, env)
		if err != nil {
			return parsedFile{}, err
		}
		return parsedFile{model: m}, nil
	}

	sources, err := parseSourcesFile(data, rel, env)
	if err != nil {
		return parsedFile{}, err
	}
	return parsedFile{sources: sources}, nil
}

func parseModel(content, rel, modelsDir, path, env string) (*ModelDecl, error) {
	fm, _, err := ExtractFrontmatter(content)
	if err != nil {
		return nil, withFile(err, rel)
	}

	dir, _ := filepath.Rel(modelsDir, filepath.Dir(path))
	m := &ModelDecl{
		Name:        fm.Name,
		Folder:      folderOf(filepath.ToSlash(dir)),
		File:        rel,
		Description: fm.Description,
		DependsOn:   fm.DependsOn,
		Columns:     fm.Columns,
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := checkColumns(rel, m.Name, m.Columns); err != nil {
		return nil, err
	}

	ctx := starlark.NewExecutionContext(env, &starlark.ThisInfo{Name: m.Name, Kind: "model", File: rel})
	if err := renderColumns(ctx, content, rel, m.Columns); err != nil {
		return nil, err
	}
	return m, nil
}

func parseSourcesFile(data []byte, rel, env string) ([]*SourceDecl, error) {
	sf, err := ParseSources(data)
	if err != nil {
		return nil, withFile(err, rel)
	}

	var out []*SourceDecl
	for _, g := range sf.Sources {
		for _, t := range g.Tables {
			s := &SourceDecl{Group: g.Name, Member: t.Name, File: rel, Columns: t.Columns}
			if err := checkColumns(rel, s.Name(), s.Columns); err != nil {
				return nil, err
			}
			ctx := starlark.NewExecutionContext(env, &starlark.ThisInfo{Name: s.Name(), Kind: "source", File: rel})
			if err := renderColumns(ctx, string(data), rel, s.Columns); err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// renderColumns evaluates {{ expr }} blocks in column descriptions in place.
func renderColumns(ctx *starlark.ExecutionContext, content, rel string, cols []propagate.Column) error {
	for i := range cols {
		desc := cols[i].Description
		if !starlark.HasExpr(desc) {
			continue
		}
		out, err := ctx.Render(desc, rel, frontmatterLine(content, desc))
		if err != nil {
			return err
		}
		cols[i].Description = out
	}
	return nil
}

// assemble registers every declaration and wires depends_on edges.
func assemble(results []parsedFile) (*Project, error) {
	reg := NewRegistry()
	graph := dag.New[propagate.Node]()

	var models []*ModelDecl
	for _, pf := range results {
		for _, s := range pf.sources {
			if err := reg.RegisterSource(s); err != nil {
				return nil, err
			}
			graph.AddNode(s.ID(), s.Node())
		}
	}
	for _, pf := range results {
		if pf.model == nil {
			continue
		}
		if err := reg.RegisterModel(pf.model); err != nil {
			return nil, err
		}
		graph.AddNode(pf.model.ID(), pf.model.Node())
		models = append(models, pf.model)
	}

	for _, m := range models {
		parents, unknown := reg.ResolveAll(m.DependsOn)
		if unknown != "" {
			return nil, &UnknownReferenceError{File: m.File, Ref: unknown}
		}
		for _, pid := range parents {
			if err := graph.AddEdge(pid, m.ID()); err != nil {
				return nil, fmt.Errorf("%s: %w", m.File, err)
			}
		}
	}

	if err := graph.CheckCycle(); err != nil {
		return nil, err
	}
	return &Project{graph: graph}, nil
}

// withFile stamps the file onto typed parse errors.
func withFile(err error, file string) error {
	switch e := err.(type) {
	case *FrontmatterParseError:
		e.File = file
	case *UnknownFieldError:
		e.File = file
	}
	return err
}

func relPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
