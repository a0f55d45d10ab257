// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/projection"
	"github.com/bartekus/policycomposer/pkg/order"
)

// ConfigPHI checks that ephi_access agrees with the per-service PHI flags.
type ConfigPHI struct{}

func (ConfigPHI) ID() string { return "config:phi" }

func (c ConfigPHI) Run(_ context.Context, deps *Deps) Result {
	if _, err := os.Stat(deps.ConfigPath); err != nil {
		return fail(c.ID(), fmt.Sprintf("config not readable: %v", err))
	}
	doc, err := config.LoadDocument(deps.ConfigPath)
	if err != nil {
		return fail(c.ID(), err.Error())
	}
	m, err := doc.Map()
	if err != nil {
		return fail(c.ID(), err.Error())
	}

	r := config.CheckPHI(m)
	switch {
	case !r.CanonicalPresent:
		return fail(c.ID(), fmt.Sprintf("%s is missing (derived value: %t); run 'config validate --fix'", config.CanonicalPHIKey, r.Derived))
	case !r.OK():
		return fail(c.ID(), fmt.Sprintf("%s is %t but per-service flags derive %t; run 'config validate --fix'", config.CanonicalPHIKey, r.Canonical, r.Derived))
	}
	return pass(c.ID(), fmt.Sprintf("%s: %t", config.CanonicalPHIKey, r.Canonical))
}

// ConfigOrder checks that the policy order file loads and every source exists.
type ConfigOrder struct{}

func (ConfigOrder) ID() string { return "config:order" }

func (c ConfigOrder) Run(_ context.Context, deps *Deps) Result {
	reg, err := loadOrder(deps)
	if err != nil {
		return fail(c.ID(), err.Error())
	}
	if err := reg.ValidateSources(deps.PolicyDir); err != nil {
		return fail(c.ID(), err.Error())
	}
	return pass(c.ID(), fmt.Sprintf("%d policies", len(reg.Items)))
}

func loadOrder(deps *Deps) (*order.Registry, error) {
	reg, err := order.Load(deps.OrderPath)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func bullets(items []string) string {
	return strings.TrimSuffix(projection.RenderList(items), "\n")
}
