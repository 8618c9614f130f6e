package skillbuilder

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/usestring/apiskill/pkg/types"
)

const versionHashPlaceholder = "PLACEHOLDER"

var titleCaser = cases.Title(language.English)

type frontmatter struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Metadata    metadataDesc `yaml:"metadata"`
}

type metadataDesc struct {
	Version       string `yaml:"version"`
	VersionHash   string `yaml:"versionHash"`
	BaseURL       string `yaml:"baseUrl"`
	AuthMethod    string `yaml:"authMethod"`
	EndpointCount int    `yaml:"endpointCount"`
	APIType       string `yaml:"apiType"`
}

// composeSkillMD renders SKILL.md with the stable section ordering
// §4.8 documents: frontmatter, About, When to Use, Quick Start,
// Captured Authentication, Internal Endpoints, Error Handling. The
// version hash is left as a literal placeholder; finalizeVersionHash
// splices in the real value once it's been computed over this text.
func composeSkillMD(service string, groups []types.EndpointGroup, auth *types.AuthInfo, apiStyle string) (string, error) {
	fm := frontmatter{
		Name:        service,
		Description: fmt.Sprintf("Internal API client skill for %s, reconstructed from captured traffic.", service),
		Metadata: metadataDesc{
			Version:       "1.0",
			VersionHash:   versionHashPlaceholder,
			EndpointCount: len(groups),
			APIType:       apiStyle,
		},
	}
	if len(groups) > 0 {
		fm.Metadata.BaseURL = groups[0].BaseURL
	}
	if auth != nil {
		fm.Metadata.AuthMethod = auth.AuthMethod
	}

	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshaling skill frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlBytes)
	b.WriteString("---\n\n")

	writeAbout(&b, service, groups, apiStyle)
	writeWhenToUse(&b, groups)
	writeQuickStart(&b, service)
	writeCapturedAuth(&b, auth)
	writeInternalEndpoints(&b, groups)
	writeErrorHandling(&b)

	return b.String(), nil
}

func writeAbout(b *strings.Builder, service string, groups []types.EndpointGroup, apiStyle string) {
	b.WriteString("## About\n\n")
	fmt.Fprintf(b, "%s exposes %d internal endpoint(s) discovered from captured traffic, ", titleCaser.String(service), len(groups))
	fmt.Fprintf(b, "described here as a %s API. Use this skill to call them the way the site's own frontend does.\n\n", apiStyle)
}

func writeWhenToUse(b *strings.Builder, groups []types.EndpointGroup) {
	b.WriteString("## When to Use\n\n")
	b.WriteString("Use this skill when a task requires reading or writing data this service owns, instead of scraping its rendered pages.\n\n")
}

func writeQuickStart(b *strings.Builder, service string) {
	b.WriteString("## Quick Start\n\n")
	fmt.Fprintf(b, "```\nimport { %sClient } from \"./scripts/api\";\nconst client = new %sClient(baseUrl, auth);\n```\n\n", titleCaser.String(sanitizeIdent(service)), titleCaser.String(sanitizeIdent(service)))
}

func writeCapturedAuth(b *strings.Builder, auth *types.AuthInfo) {
	b.WriteString("## Captured Authentication\n\n")
	if auth == nil {
		b.WriteString("No authentication material was observed in this traffic sample.\n\n")
		return
	}
	fmt.Fprintf(b, "- Method: `%s`\n", orNone(auth.AuthMethod))
	fmt.Fprintf(b, "- Headers observed: %d\n", len(auth.AuthHeaders))
	fmt.Fprintf(b, "- Cookies observed: %d\n", len(auth.Cookies))
	if auth.CSRFToken != nil {
		fmt.Fprintf(b, "- CSRF token provenance: `%s`\n", auth.CSRFToken.Provenance)
	}
	b.WriteString("\n")
}

func writeInternalEndpoints(b *strings.Builder, groups []types.EndpointGroup) {
	b.WriteString("## Internal Endpoints\n\n")
	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(b, "- `%s %s`", g.Method, g.NormalizedPath)
		if summary := schemaLine(g); summary != "" {
			fmt.Fprintf(b, " — %s", summary)
		}
		if g.Description != "" {
			fmt.Fprintf(b, " (%s)", g.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func schemaLine(g *types.EndpointGroup) string {
	switch {
	case g.ResponseSchema != nil && g.ResponseSchema.Kind != "":
		return fmt.Sprintf("responds with %s", g.ResponseSchema.Kind)
	case g.ResponseSummary != "":
		return g.ResponseSummary
	default:
		return ""
	}
}

func writeErrorHandling(b *strings.Builder) {
	b.WriteString("## Error Handling\n\n")
	b.WriteString("Non-2xx responses carry the service's own error shape; see references/REFERENCE.md for observed status codes and error fields.\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Api"
	}
	return b.String()
}

// normalizeHashLine rewrites a spliced versionHash value back to the
// literal placeholder, so two skill_md documents that differ only in
// their embedded hash compare equal for diffing purposes.
func normalizeHashLine(skillMD string) string {
	lines := strings.Split(skillMD, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "versionHash:") {
			lines[i] = "  versionHash: " + versionHashPlaceholder
		}
	}
	return strings.Join(lines, "\n")
}
