// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"strings"

	"github.com/bartekus/policycomposer/internal/projection"
)

// CanonicalPHIKey is the flag templates rely on to decide whether ePHI
// language is rendered.
const CanonicalPHIKey = "ephi_access"

// KnownPHIFlags are the per-service flags the canonical flag is derived from.
var KnownPHIFlags = []string{
	"saas_phi_access",
	"paas_phi_access",
	"medical_device_phi_access",
	"mobile_app_phi_access",
}

// FlagValue is one per-service flag and its truthiness.
type FlagValue struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// PHIReport describes how the canonical ePHI flag relates to the
// per-service flags.
type PHIReport struct {
	PHIKeys          []string    `json:"phi_keys"`
	Flags            []FlagValue `json:"flags"`
	Derived          bool        `json:"derived"`
	CanonicalPresent bool        `json:"canonical_present"`
	Canonical        bool        `json:"canonical"`
}

// OK reports whether the canonical flag exists and matches the derived value.
func (r PHIReport) OK() bool {
	return r.CanonicalPresent && r.Canonical == r.Derived
}

// CheckPHI inspects a config mapping.
func CheckPHI(m map[string]any) PHIReport {
	var r PHIReport

	for _, k := range projection.SortedKeys(m) {
		if strings.Contains(strings.ToLower(k), "phi") {
			r.PHIKeys = append(r.PHIKeys, k)
		}
	}

	for _, k := range KnownPHIFlags {
		v := truthy(m[k])
		r.Flags = append(r.Flags, FlagValue{Key: k, Value: v})
		if v {
			r.Derived = true
		}
	}

	if v, ok := m[CanonicalPHIKey]; ok {
		r.CanonicalPresent = true
		r.Canonical = truthy(v)
	}
	return r
}

// FixPHI sets the canonical flag in the file at path to the derived value,
// leaving the rest of the document untouched.
func FixPHI(path string, derived bool) error {
	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}
	if err := doc.Set(CanonicalPHIKey, derived); err != nil {
		return err
	}
	return doc.Save(path)
}

// truthy follows YAML-config intuition: absent, false, zero and empty
// values are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
