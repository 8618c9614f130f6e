// Package skillbuilder implements SkillBuilder: turning an analyzed
// ApiData sample into the agent-consumable skill package (skill_md,
// api_template, auth_json, reference_md, endpoints_ref) the rest of
// the pipeline hands off to a model.
package skillbuilder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/usestring/apiskill/pkg/schema"
	"github.com/usestring/apiskill/pkg/types"
)

// Build composes a full skill package for data, merging in any
// endpoints documented by a prior package at priorDir that this run
// didn't observe. It returns the package, a short diff summary, and
// whether it differs from what's already on priorDir so a caller can
// skip rewriting an unchanged package.
func Build(data *types.ApiData, analysis *types.AgenticAnalysis, priorDir string) (*types.SkillPackage, string, bool, error) {
	service := data.Service
	var priorSkillMD string
	var priorEndpointCount int
	if priorDir != "" {
		if b, err := os.ReadFile(filepath.Join(priorDir, "SKILL.md")); err == nil {
			priorSkillMD = string(b)
			priorEndpointCount = countPriorEndpoints(priorSkillMD)
		}
	}

	groups := mergeWithPrior(data.EndpointGroups, priorSkillMD, service)

	apiStyle := "rest"
	if analysis != nil {
		apiStyle = analysis.APIStyle
	}
	skillMD, err := composeSkillMD(service, groups, data.Auth, apiStyle)
	if err != nil {
		return nil, "", false, fmt.Errorf("composing skill_md: %w", err)
	}
	apiTemplate, apiTemplateExt := composeAPITemplate(service, groups)
	endpointsJSON, _ := composeEndpointsRef(groups)
	finalMD, hash := finalizeVersionHash(skillMD, apiTemplate, endpointsJSON)

	authJSON, err := composeAuthJSON(service, data.BaseURL, data.Auth)
	if err != nil {
		return nil, "", false, fmt.Errorf("composing auth_json: %w", err)
	}

	pkg := &types.SkillPackage{
		Service:        service,
		SkillMD:        finalMD,
		APITemplate:    apiTemplate,
		APITemplateExt: apiTemplateExt,
		AuthJSON:       authJSON,
		ReferenceMD:    composeReferenceMD(groups),
		EndpointsJSON:  endpointsJSON,
		VersionHash:    hash,
	}

	warnings := selfCheck(groups)
	for _, w := range warnings {
		slog.Warn("skill package self-check", slog.String("service", service), slog.String("warning", w))
	}

	kind, diff := compareBuilds(priorSkillMD, finalMD, priorEndpointCount, len(groups))
	return pkg, diff, kind != diffNone, nil
}

// selfCheck validates every group's stored example bodies against the
// schema its own observations inferred, catching a regression in
// schema.Infer/ToJSONSchema before it reaches a consuming agent. A
// mismatch is reported, never treated as fatal: the package still
// ships, since the schema is advisory documentation, not a contract
// the service promised to honor.
func selfCheck(groups []types.EndpointGroup) []string {
	var warnings []string
	for i := range groups {
		g := &groups[i]
		if g.ResponseSchema == nil {
			continue
		}
		js := schema.ToJSONSchema(g.ResponseSchema)
		compiled, err := schema.Compile(js)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s %s: response schema failed to compile: %v", g.Method, g.NormalizedPath, err))
			continue
		}
		for _, ex := range g.Examples {
			if ex.ResponseBody == "" {
				continue
			}
			if issues := schema.ValidateExample(compiled, []byte(ex.ResponseBody)); len(issues) > 0 {
				warnings = append(warnings, fmt.Sprintf("%s %s: example response does not match its own inferred schema: %v", g.Method, g.NormalizedPath, issues))
			}
		}
	}
	return warnings
}

func countPriorEndpoints(priorSkillMD string) int {
	return len(methodPathLine.FindAllString(priorSkillMD, -1))
}

// Publish writes pkg's files under dir, using an advisory per-service
// lock so two concurrent builds for the same service don't interleave
// writes. auth.json is always refreshed; the rest are skipped when
// changed is false, matching the "Updated (N)" / no-op diff outcome.
func Publish(dir string, pkg *types.SkillPackage, changed bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating package dir: %w", err)
	}
	lockPath := filepath.Join(dir, ".skillbuilder.lock")
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("acquiring advisory lock at %s: %w", lockPath, err)
	}
	defer func() {
		lock.Close()
		os.Remove(lockPath)
	}()

	if err := writeFileAtomic(filepath.Join(dir, "auth.json"), pkg.AuthJSON); err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := writeFileAtomic(filepath.Join(dir, "SKILL.md"), []byte(pkg.SkillMD)); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, "scripts", "api."+pkg.APITemplateExt), []byte(pkg.APITemplate)); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, "references", "REFERENCE.md"), []byte(pkg.ReferenceMD)); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, "references", "ENDPOINTS.json"), pkg.EndpointsJSON); err != nil {
		return err
	}
	return nil
}

func writeFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}
