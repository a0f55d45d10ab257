// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPHI(t *testing.T) {
	tests := []struct {
		name    string
		m       map[string]any
		derived bool
		ok      bool
	}{
		{name: "all false and canonical false", m: map[string]any{"ephi_access": false}, derived: false, ok: true},
		{name: "missing canonical", m: map[string]any{"saas_phi_access": false}, derived: false, ok: false},
		{name: "service true canonical true", m: map[string]any{"paas_phi_access": true, "ephi_access": true}, derived: true, ok: true},
		{name: "service true canonical false", m: map[string]any{"mobile_app_phi_access": true, "ephi_access": false}, derived: true, ok: false},
		{name: "truthy string", m: map[string]any{"medical_device_phi_access": "yes please", "ephi_access": true}, derived: true, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckPHI(tt.m)
			assert.Equal(t, tt.derived, r.Derived)
			assert.Equal(t, tt.ok, r.OK())
			assert.Len(t, r.Flags, len(KnownPHIFlags))
		})
	}
}

func TestCheckPHI_ListsPHIKeys(t *testing.T) {
	r := CheckPHI(map[string]any{"Saas_PHI_access": true, "company_name": "x", "ephi_access": true})
	assert.Equal(t, []string{"Saas_PHI_access", "ephi_access"}, r.PHIKeys)
}

func TestFixPHI_PreservesOrderAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := `# Organization settings
company_name: Acme # legal name
saas_phi_access: true
ephi_access: false
vendors:
  - name: Cloudy
    baa: true
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	require.NoError(t, FixPHI(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# Organization settings")
	assert.Contains(t, out, "company_name: Acme # legal name")
	assert.Contains(t, out, "ephi_access: true")
	assert.Less(t, strings.Index(out, "company_name"), strings.Index(out, "ephi_access"))
	assert.Less(t, strings.Index(out, "ephi_access"), strings.Index(out, "vendors"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, CheckPHI(cfg.Bindings()).OK())
}

func TestFixPHI_AppendsMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("company_name: Acme\n"), 0o600))

	require.NoError(t, FixPHI(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "company_name: Acme\nephi_access: false\n", string(data))
}
