package rule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleRules = `
rules:
  - name: var-to-let
    pattern: \k"var" (?<name>\i)
    rewrite: "let :[name]"
  - name: drop-debugger
    pattern: \k"debugger" ";"
    rewrite: ""
    priority: 10
`

func TestParse(t *testing.T) {
	rules, err := Parse([]byte(sampleRules))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "var-to-let", rules[0].Name)
	assert.Equal(t, `\k"var" (?<name>\i)`, rules[0].Pattern)
	assert.Equal(t, "let :[name]", rules[0].Rewrite)
	assert.Equal(t, 0, rules[0].Priority)
	assert.Equal(t, 10, rules[1].Priority)

	_, err = Parse([]byte("rules: ["))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))

	rules, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestNewApplierRejectsBadPattern(t *testing.T) {
	_, err := NewApplier([]Rule{{Name: "broken", Pattern: `\j`}}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "broken"`)
}

func TestApply(t *testing.T) {
	rules, err := Parse([]byte(sampleRules))
	require.NoError(t, err)
	applier, err := NewApplier(rules, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "rewrites every occurrence",
			source: "var x = 1;\nvar y = 2;\n",
			want:   "let x = 1;\nlet y = 2;\n",
		},
		{
			name:   "untouched source comes back byte-identical",
			source: "const z = 3; // keep\n",
			want:   "const z = 3; // keep\n",
		},
		{
			name:   "empty rewrite removes the span",
			source: "debugger; x();",
			want:   " x();",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applier.Apply(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyFile(t *testing.T) {
	rules, err := Parse([]byte(sampleRules))
	require.NoError(t, err)
	applier, err := NewApplier(rules, zap.NewNop())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "app.ts")
	require.NoError(t, os.WriteFile(path, []byte("var a = 1;\n"), 0o644))

	changed, err := applier.ApplyFile(path, true)
	require.NoError(t, err)
	assert.True(t, changed)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "var a = 1;\n", string(data), "dry run must not write")

	changed, err = applier.ApplyFile(path, false)
	require.NoError(t, err)
	assert.True(t, changed)
	data, _ = os.ReadFile(path)
	assert.Equal(t, "let a = 1;\n", string(data))

	changed, err = applier.ApplyFile(path, false)
	require.NoError(t, err)
	assert.False(t, changed, "second pass finds nothing to do")
}

func TestExpand(t *testing.T) {
	rules := []Rule{{Name: "r", Pattern: `\k"var" (?<name>\i)`, Rewrite: "let :[name] /* :[missing] */"}}
	applier, err := NewApplier(rules, zap.NewNop())
	require.NoError(t, err)

	got, err := applier.Apply("var abc;")
	require.NoError(t, err)
	// unknown holes stay as written
	assert.Equal(t, "let abc /* :[missing] */;", got)
}
