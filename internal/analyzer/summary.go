package analyzer

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/apiskill/pkg/types"
)

var summaryPrinter = message.NewPrinter(language.English)

// composeSummary renders the analysis into the single paragraph an
// agent reads first, per §4.6.
func composeSummary(a *types.AgenticAnalysis, groups []types.EndpointGroup) string {
	var b strings.Builder

	service := a.Service
	if service == "" {
		service = "this service"
	}
	summaryPrinter.Fprintf(&b, "%s exposes %d endpoint%s as a %s API",
		service, len(groups), plural(len(groups)), a.APIStyle)
	if a.Versioning != nil && a.Versioning.Style != "none" {
		summaryPrinter.Fprintf(&b, " versioned via %s (%s)", a.Versioning.Style, a.Versioning.Value)
	}
	b.WriteString(".")

	if len(a.Entities) > 0 {
		complete := 0
		for _, e := range a.Entities {
			if e.CRUDComplete {
				complete++
			}
		}
		summaryPrinter.Fprintf(&b, " %d entit%s identified (%s), %d with full CRUD coverage.",
			len(a.Entities), pluralY(len(a.Entities)), entityNames(a.Entities), complete)
	}

	if len(a.AuthFlows) > 0 {
		summaryPrinter.Fprintf(&b, " Authentication uses %d flow%s", len(a.AuthFlows), plural(len(a.AuthFlows)))
		if hasRefresh(a.AuthFlows) {
			b.WriteString(" including a refresh path")
		}
		b.WriteString(".")
	}

	if len(a.DataFlows) > 0 {
		orch := 0
		for _, f := range a.DataFlows {
			if f.Orchestrator {
				orch++
			}
		}
		summaryPrinter.Fprintf(&b, " %d data dependenc%s traced between endpoints", len(a.DataFlows), pluralY(len(a.DataFlows)))
		if orch > 0 {
			summaryPrinter.Fprintf(&b, ", %d orchestrating multiple producers", orch)
		}
		b.WriteString(".")
	}

	if len(a.Pagination) > 0 {
		summaryPrinter.Fprintf(&b, " %d collection endpoint%s show pagination.", len(a.Pagination), plural(len(a.Pagination)))
	}

	if len(a.Errors) > 0 {
		summaryPrinter.Fprintf(&b, " %d distinct error status%s observed.", len(a.Errors), pluralEs(len(a.Errors)))
	}

	if len(a.RateLimits) > 0 {
		b.WriteString(" Rate-limit headers are present.")
	}

	summaryPrinter.Fprintf(&b, " Overall confidence %.2f.", a.Confidence)

	return b.String()
}

func entityNames(entities []types.Entity) string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	if len(names) > 5 {
		names = append(names[:5], "…")
	}
	return strings.Join(names, ", ")
}

func hasRefresh(flows []types.AuthFlow) bool {
	for _, f := range flows {
		if f.RefreshEndpoint != "" {
			return true
		}
	}
	return false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func pluralEs(n int) string {
	if n == 1 {
		return ""
	}
	return "es"
}
