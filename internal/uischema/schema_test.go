// SPDX-License-Identifier: AGPL-3.0-or-later

package uischema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
company:
  _label: Company Details
  _columns: 2
  company_name:
    widget: text_input
    label: Company Name
  ephi_access:
    widget: toggle
vendors_section:
  _widget: expander
  vendors:
    _widget: list_of_objects
    _object_schema:
      name:
        widget: text_input
        label: Name
      services:
        widget: multiselect
        options: [hosting, email]
      notes:
        widget: text_area
tools:
  approved_tools:
    _widget: dict_of_list_of_objects
    _object_schema:
      name:
        widget: text_input
  hipaa_audit:
    _widget: dict_group
    provider:
      widget: text_input
      label: Provider
`

func mustParse(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse([]byte(testSchema))
	require.NoError(t, err)
	return s
}

func TestParse_KeepsOrderAndDefaults(t *testing.T) {
	s := mustParse(t)

	require.Len(t, s.Sections, 3)
	assert.Equal(t, "company", s.Sections[0].Key)
	assert.Equal(t, "Company Details", s.Sections[0].Label)
	assert.Equal(t, WidgetContainer, s.Sections[0].Widget)
	assert.Equal(t, 2, s.Sections[0].Columns)
	assert.Equal(t, "Vendors Section", s.Sections[1].Label)
	assert.Equal(t, "expander", s.Sections[1].Widget)

	fields := s.Sections[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "company_name", fields[0].Key)
	assert.Equal(t, "Ephi Access", fields[1].Label)

	vendors := s.Sections[1].Fields[0]
	assert.Equal(t, WidgetListOfObjects, vendors.Widget)
	require.Len(t, vendors.Object, 3)
	assert.Equal(t, []string{"hosting", "email"}, vendors.Object[1].Options)
	assert.Empty(t, vendors.Fields)

	audit := s.Sections[2].Fields[1]
	require.Len(t, audit.Fields, 1)
	assert.Equal(t, "Provider", audit.Fields[0].Label)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("company: scalar\n"))
	assert.Error(t, err)

	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Sections)
}

func TestListFields(t *testing.T) {
	s := mustParse(t)

	var keys []string
	for _, f := range s.ListFields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"vendors", "approved_tools"}, keys)

	_, ok := s.ListField("company_name")
	assert.False(t, ok)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Approved Tools", Title("approved_tools"))
	assert.Equal(t, "X", Title("x"))
	assert.Equal(t, "", Title(""))
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestBackfillIDs(t *testing.T) {
	s := mustParse(t)
	cfg := map[string]any{
		"vendors": []any{
			map[string]any{"name": "AWS"},
			map[string]any{"name": "Google", IDKey: "keep"},
		},
		"approved_tools": map[string]any{
			"collaboration": []any{map[string]any{"name": "Slack"}},
		},
		"company_name": "Acme",
	}

	assert.Equal(t, 2, s.BackfillIDs(cfg, seqIDs()))

	vendors := cfg["vendors"].([]any)
	assert.NotEmpty(t, vendors[0].(map[string]any)[IDKey])
	assert.Equal(t, "keep", vendors[1].(map[string]any)[IDKey])

	slack := cfg["approved_tools"].(map[string]any)["collaboration"].([]any)[0].(map[string]any)
	assert.NotEmpty(t, slack[IDKey])

	assert.Equal(t, 0, s.BackfillIDs(cfg, seqIDs()))
}

func TestAddItem(t *testing.T) {
	s := mustParse(t)
	cfg := map[string]any{}

	item, err := s.AddItem(cfg, "vendors", "v1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{IDKey: "v1", "name": "", "services": []any{}, "notes": []any{}}, item)
	assert.Len(t, cfg["vendors"], 1)

	_, err = s.AddItem(cfg, "approved_tools.security", "t1")
	require.NoError(t, err)
	groups := cfg["approved_tools"].(map[string]any)
	assert.Len(t, groups["security"], 1)

	_, err = s.AddItem(cfg, "approved_tools", "t2")
	assert.ErrorIs(t, err, ErrUnknownList)
	_, err = s.AddItem(cfg, "vendors.nested", "v2")
	assert.ErrorIs(t, err, ErrUnknownList)
	_, err = s.AddItem(cfg, "company_name", "x")
	assert.ErrorIs(t, err, ErrUnknownList)
}

func TestDeleteItem(t *testing.T) {
	cfg := map[string]any{
		"vendors": []any{
			map[string]any{IDKey: "a", "name": "AWS"},
			map[string]any{IDKey: "b", "name": "Google"},
		},
		"approved_tools": map[string]any{
			"collaboration": []any{map[string]any{IDKey: "s", "name": "Slack"}},
		},
	}

	require.NoError(t, DeleteItem(cfg, "vendors", "a"))
	assert.Equal(t, []any{map[string]any{IDKey: "b", "name": "Google"}}, cfg["vendors"])

	require.NoError(t, DeleteItem(cfg, "approved_tools.collaboration", "s"))
	assert.Empty(t, cfg["approved_tools"].(map[string]any)["collaboration"])

	assert.ErrorIs(t, DeleteItem(cfg, "vendors", "zzz"), ErrItemNotFound)
	assert.ErrorIs(t, DeleteItem(cfg, "approved_tools.missing", "s"), ErrItemNotFound)
	assert.ErrorIs(t, DeleteItem(cfg, "nothing", "s"), ErrItemNotFound)
}
