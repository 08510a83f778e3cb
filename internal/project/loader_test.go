package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/docprop/internal/dag"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/leapstack-labs/docprop/internal/starlark"
	"github.com/leapstack-labs/docprop/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourcesYAML = `version: 2
sources:
  - name: raw
    tables:
      - name: customers
        columns:
          - name: id
            description: Customer key
          - name: email
            description: Contact email
`

const stgCustomersSQL = `/*---
depends_on:
  - raw.customers
columns:
  - name: user_id
    description: Unique customer identifier
  - name: email
---*/
SELECT id AS user_id, email FROM raw.customers
`

const dimCustomersSQL = `/*---
depends_on:
  - staging.stg_customers
columns:
  - name: customer_id
    description: '{{ inherit("stg_customers", "user_id") }}'
  - name: email
---*/
SELECT user_id AS customer_id, email FROM stg_customers
`

// writeProject creates files below a temp project root.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func loadProject(t *testing.T, root string) (*Project, error) {
	t.Helper()
	return Load(context.Background(), Options{
		Root:      root,
		ModelsDir: "models",
		Env:       "dev",
		Logger:    testutil.NewTestLogger(t),
	})
}

func customersProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"models/sources.yml":               sourcesYAML,
		"models/staging/stg_customers.sql": stgCustomersSQL,
		"models/marts/dim_customers.sql":   dimCustomersSQL,
		"models/.scratch/ignored.sql":      "/*---\nbogus: true\n---*/",
		"models/README.md":                 "not a declaration",
	})
}

func TestLoad_Project(t *testing.T) {
	p, err := loadProject(t, customersProject(t))
	require.NoError(t, err)

	nodes := p.Nodes()
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{
		"model.marts.dim_customers",
		"model.staging.stg_customers",
		"source.raw.customers",
	}, ids)

	dim := nodes[0]
	assert.Equal(t, "dim_customers", dim.Name)
	assert.Equal(t, propagate.NodeModel, dim.Type)
	assert.Equal(t, "models/marts/dim_customers.sql", dim.FilePath)
	require.Len(t, dim.Columns, 2)
	assert.Equal(t, "Inherited: stg_customers.user_id", dim.Columns[0].Description)

	src := nodes[2]
	assert.Equal(t, "raw.customers", src.Name)
	assert.Equal(t, propagate.NodeSource, src.Type)
	assert.Equal(t, "models/sources.yml", src.FilePath)

	assert.Equal(t, []string{"model.staging.stg_customers"}, p.Parents("model.marts.dim_customers"))
	assert.Equal(t, []string{"source.raw.customers"}, p.Parents("model.staging.stg_customers"))
	assert.Empty(t, p.Parents("source.raw.customers"))
}

func TestLoad_FeedsEngine(t *testing.T) {
	p, err := loadProject(t, customersProject(t))
	require.NoError(t, err)

	report, err := propagate.New(propagate.Config{}).Run(p)
	require.NoError(t, err)

	assert.Equal(t,
		"inherited=1 resolved=1 ambiguous=0 no_source=1 unresolved=0 already_documented=1",
		report.Summary())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing models dir",
			files: map[string]string{"docprop.yaml": ""},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name: "unknown frontmatter field",
			files: map[string]string{
				"models/a.sql": "/*---\nmaterialized: table\n---*/\nSELECT 1",
			},
			check: func(t *testing.T, err error) {
				var fieldErr *UnknownFieldError
				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, "materialized", fieldErr.Field)
				assert.Equal(t, "models/a.sql", fieldErr.File)
			},
		},
		{
			name: "invalid yaml",
			files: map[string]string{
				"models/a.sql": "/*---\ncolumns: [\n---*/\nSELECT 1",
			},
			check: func(t *testing.T, err error) {
				var parseErr *FrontmatterParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, "models/a.sql", parseErr.File)
			},
		},
		{
			name: "duplicate column",
			files: map[string]string{
				"models/a.sql": "/*---\ncolumns:\n  - name: x\n  - name: x\n---*/\nSELECT 1",
			},
			check: func(t *testing.T, err error) {
				var dupErr *DuplicateColumnError
				require.ErrorAs(t, err, &dupErr)
				assert.Equal(t, "x", dupErr.Column)
			},
		},
		{
			name: "unknown reference",
			files: map[string]string{
				"models/a.sql": "/*---\ndepends_on: [nowhere]\n---*/\nSELECT 1",
			},
			check: func(t *testing.T, err error) {
				var refErr *UnknownReferenceError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, "nowhere", refErr.Ref)
			},
		},
		{
			name: "cycle",
			files: map[string]string{
				"models/a.sql": "/*---\ndepends_on: [b]\n---*/\nSELECT 1",
				"models/b.sql": "/*---\ndepends_on: [a]\n---*/\nSELECT 1",
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, dag.ErrCycle)
			},
		},
		{
			name: "duplicate model name",
			files: map[string]string{
				"models/one/a.sql": "SELECT 1",
				"models/two/a.sql": "SELECT 2",
			},
			check: func(t *testing.T, err error) {
				var dupErr *DuplicateEntityError
				require.ErrorAs(t, err, &dupErr)
				assert.Equal(t, "a", dupErr.Name)
			},
		},
		{
			name: "unknown sources field",
			files: map[string]string{
				"models/sources.yml": "sources:\n  - name: raw\n    schema: x\n",
			},
			check: func(t *testing.T, err error) {
				var parseErr *FrontmatterParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, "models/sources.yml", parseErr.File)
			},
		},
		{
			name: "description expression error",
			files: map[string]string{
				"models/a.sql": "/*---\ncolumns:\n  - name: x\n    description: '{{ nope }}'\n---*/\nSELECT 1",
			},
			check: func(t *testing.T, err error) {
				var evalErr *starlark.EvalError
				require.ErrorAs(t, err, &evalErr)
				assert.Equal(t, "models/a.sql", evalErr.File)
				assert.Equal(t, 4, evalErr.Line)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadProject(t, writeProject(t, tt.files))
			require.Error(t, err)
			assert.ErrorIs(t, err, propagate.ErrGraphUnavailable)
			tt.check(t, err)
		})
	}
}

func TestLoad_ModelWithoutFrontmatter(t *testing.T) {
	root := writeProject(t, map[string]string{"models/plain.sql": "SELECT 1"})

	p, err := loadProject(t, root)
	require.NoError(t, err)

	nodes := p.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "model.plain", nodes[0].ID)
	assert.Equal(t, "plain", nodes[0].Name)
	assert.Empty(t, nodes[0].Columns)
}

func TestLoad_DependsOnFormsAndOrder(t *testing.T) {
	root := writeProject(t, map[string]string{
		"models/sources.yml":   "sources:\n  - name: raw\n    tables:\n      - name: orders\n",
		"models/staging/z.sql": "SELECT 1",
		"models/a.sql":         "SELECT 1",
		"models/fct.sql":       "/*---\ndepends_on: [staging.z, raw.orders, a, z]\n---*/\nSELECT 1",
	})

	p, err := loadProject(t, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"model.staging.z", "source.raw.orders", "model.a"}, p.Parents("model.fct"),
		"parents keep declaration order and drop repeats")
}

func TestLoad_Cancelled(t *testing.T) {
	root := customersProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, Options{Root: root, ModelsDir: "models"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
