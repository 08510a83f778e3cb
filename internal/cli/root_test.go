package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/docprop/internal/cli/commands"
	"github.com/leapstack-labs/docprop/internal/cli/testutil"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "docprop", cmd.Use)

	want := []string{"completion", "dag", "directive", "lineage", "list", "manifest", "propagate", "version"}
	var got []string
	for _, c := range cmd.Commands() {
		got = append(got, c.Name())
	}
	assert.ElementsMatch(t, want, got)

	for _, flag := range []string{"config", "project-dir", "models-dir", "env", "concurrency", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestPropagate_Project(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, _, err := execute(t, "propagate", "--project-dir", root)
	require.NoError(t, err, "unresolved and ambiguous columns never fail the run")

	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, testutil.ProjectSummary)
	assert.Contains(t, out, "| fct_orders.customer_key | unresolved |")
}

func TestPropagate_JSONOutput(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, _, err := execute(t, "propagate", "--project-dir", root, "-o", "json", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id"`)
	assert.Contains(t, out, `"summary": "`+testutil.ProjectSummary+`"`)
	assert.Contains(t, out, `"status": "already_documented"`)
}

func TestPropagate_FailOn(t *testing.T) {
	root := testutil.SetupTestProject(t)

	_, _, err := execute(t, "propagate", "--project-dir", root, "--fail-on", "ambiguous,unresolved")
	require.ErrorIs(t, err, commands.ErrFailOn)
	assert.Contains(t, err.Error(), "ambiguous=1 unresolved=1")

	_, _, err = execute(t, "propagate", "--project-dir", root, "--fail-on", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "bogus"`)
}

func TestPropagate_GraphUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing models dir"},
		{
			name: "broken frontmatter",
			files: map[string]string{
				"models/a.sql": "/*---\ncolumns: [\n---*/\nSELECT 1",
			},
		},
		{
			name: "cycle",
			files: map[string]string{
				"models/a.sql": "/*---\ndepends_on: [b]\n---*/\nSELECT 1",
				"models/b.sql": "/*---\ndepends_on: [a]\n---*/\nSELECT 1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for name, content := range tt.files {
				path := filepath.Join(root, filepath.FromSlash(name))
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			}

			out, _, err := execute(t, "propagate", "--project-dir", root)
			require.ErrorIs(t, err, propagate.ErrGraphUnavailable)
			assert.Empty(t, out, "no partial report is printed")
		})
	}
}

func TestManifest_RoundTrip(t *testing.T) {
	root := testutil.SetupTestProject(t)

	manifest, _, err := execute(t, "manifest", "--project-dir", root)
	require.NoError(t, err)
	assert.Contains(t, manifest, `"version": 1`)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	out, _, err := execute(t, "propagate", "--project-dir", t.TempDir(), "--manifest", path)
	require.NoError(t, err)
	assert.Contains(t, out, testutil.ProjectSummary, "a manifest export yields the same report")
}

func TestDirective(t *testing.T) {
	root := t.TempDir()

	out, errOut, err := execute(t, "directive", "stg_customers", "user_id", "--project-dir", root)
	require.NoError(t, err)
	assert.Equal(t, "Inherited: stg_customers.user_id\n", out)
	assert.Empty(t, errOut)

	_, errOut, err = execute(t, "directive", "raw.customers", "id", "--project-dir", root)
	require.NoError(t, err)
	assert.Contains(t, errOut, "will never resolve")

	_, _, err = execute(t, "directive", "only-one", "--project-dir", root)
	require.Error(t, err)
}

func TestDAGAndList(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, _, err := execute(t, "dag", "--project-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "## Level 0 (Roots)")
	assert.Contains(t, out, "- model.marts.fct_orders\n  - depends on: model.staging.stg_orders, model.staging.stg_delivery")

	out, _, err = execute(t, "list", "--project-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "# Entities (7 total)")

	out, _, err = execute(t, "lineage", "dim_customers", "--project-dir", root, "--downstream=false")
	require.NoError(t, err)
	assert.Contains(t, out, "## Upstream (2)")
	assert.NotContains(t, out, "Downstream")
}

func TestVerboseLogsToStderr(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, errOut, err := execute(t, "propagate", "--project-dir", root, "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "propagation finished")
	assert.Contains(t, errOut, "run_id=")
	assert.False(t, strings.Contains(out, "level=DEBUG"), "logs never go to stdout")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docprop v"+Version)
}
