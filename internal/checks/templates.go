// SPDX-License-Identifier: AGPL-3.0-or-later

package checks

import (
	"context"
	"fmt"
	"path"

	"github.com/bartekus/policycomposer/internal/render"
)

// TemplatesParse checks that every ordered template exists and parses.
type TemplatesParse struct{}

func (TemplatesParse) ID() string { return "templates:parse" }

func (c TemplatesParse) Run(_ context.Context, deps *Deps) Result {
	reg, err := loadOrder(deps)
	if err != nil {
		return fail(c.ID(), err.Error())
	}

	engine := render.New(deps.PolicyDir)
	var failures []string
	for _, src := range reg.Sources() {
		if err := engine.Parse(src); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return fail(c.ID(), bullets(failures))
	}
	return pass(c.ID(), fmt.Sprintf("%d templates parsed", len(reg.Items)))
}

// TemplatesOrphans reports templates that no policy order entry references.
type TemplatesOrphans struct{}

func (TemplatesOrphans) ID() string { return "templates:orphans" }

func (c TemplatesOrphans) Run(_ context.Context, deps *Deps) Result {
	reg, err := loadOrder(deps)
	if err != nil {
		return fail(c.ID(), err.Error())
	}

	all, err := render.New(deps.PolicyDir).Templates()
	if err != nil {
		return fail(c.ID(), err.Error())
	}

	used := make(map[string]bool, len(reg.Items))
	for _, src := range reg.Sources() {
		used[path.Clean(src)] = true
	}

	var orphans []string
	for _, name := range all {
		if !used[name] {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		return fail(c.ID(), "templates not listed in the policy order:\n"+bullets(orphans))
	}
	return pass(c.ID(), "")
}
