package order

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOrder(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy_order.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeOrder(t, `
policy_files:
  - source: access_control.md
    output: "{{ .company_short }}-Access-Control.md"
    title: "Access Control Policy"
  - source: backup.md
    output: Backup.md
`)

	reg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reg.Items, 2)
	require.NoError(t, reg.Validate())

	assert.Equal(t, "Access Control Policy", reg.Items[0].TitleTemplate())
	assert.Equal(t, "Backup", reg.Items[1].TitleTemplate())
	assert.Equal(t, []string{"access_control.md", "backup.md"}, reg.Sources())
}

func TestLoad_MalformedItem(t *testing.T) {
	path := writeOrder(t, `
policy_files:
  - access_control.md
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy_files[0]")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeOrder(t, "policy_files: [\n"))
	assert.Error(t, err)
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		wantErr string
	}{
		{name: "missing source", items: []Item{{Output: "a.md"}}, wantErr: "missing source"},
		{name: "missing output", items: []Item{{Source: "a.md"}}, wantErr: "missing output"},
		{name: "absolute source", items: []Item{{Source: "/etc/passwd", Output: "a.md"}}, wantErr: "must be relative"},
		{name: "escaping source", items: []Item{{Source: "../secret.md", Output: "a.md"}}, wantErr: "must not escape"},
		{name: "duplicate", items: []Item{{Source: "a.md", Output: "a.md"}, {Source: "a.md", Output: "b.md"}}, wantErr: "duplicate"},
		{name: "nested ok", items: []Item{{Source: "hr/leave.md", Output: "Leave.md"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Registry{Items: tt.items}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_ValidateSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A"), 0o600))

	reg := &Registry{Items: []Item{{Source: "a.md", Output: "A.md"}}}
	assert.NoError(t, reg.ValidateSources(dir))

	reg.Items = append(reg.Items, Item{Source: "b.md", Output: "B.md"})
	err := reg.ValidateSources(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.md")
}
