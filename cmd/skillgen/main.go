// Command skillgen turns a captured HAR archive into an
// agent-consumable API skill package: one HarParser -> AuthExtractor
// -> EndpointEnricher -> AgenticAnalyzer -> EndpointProber ->
// SkillBuilder pass, with results written to an output directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/apiskill/internal/analyzer"
	"github.com/usestring/apiskill/internal/authextract"
	"github.com/usestring/apiskill/internal/config"
	"github.com/usestring/apiskill/internal/enrich"
	"github.com/usestring/apiskill/internal/harparse"
	"github.com/usestring/apiskill/internal/logging"
	"github.com/usestring/apiskill/internal/prober"
	"github.com/usestring/apiskill/internal/skillbuilder"
	"github.com/usestring/apiskill/pkg/describe"
	"github.com/usestring/apiskill/pkg/har"
	"github.com/usestring/apiskill/pkg/types"
)

func main() {
	harPath := flag.String("har", "", "path to a captured HAR archive")
	outDir := flag.String("out", "./skill-out", "output directory for the generated skill package")
	flag.Parse()

	if *harPath == "" {
		fmt.Fprintln(os.Stderr, "usage: skillgen -har <path.har> [-out <dir>]")
		os.Exit(2)
	}

	cfg := config.Load()
	cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *harPath, *outDir, cfg); err != nil {
		slog.Error("skillgen failed", "error", err)
		os.Exit(1)
	}
	slog.Info("skillgen finished")
}

func run(ctx context.Context, harPath, outDir string, cfg *config.Config) error {
	raw, err := os.ReadFile(harPath)
	if err != nil {
		return types.NewError(types.InputMalformed, "reading HAR file", err)
	}

	exchanges, warnings, err := har.Parse(raw)
	if err != nil {
		return types.NewError(types.InputMalformed, "parsing HAR document", err)
	}
	for _, w := range warnings {
		slog.Warn("har parse warning", "index", w.Index, "message", w.Msg)
	}

	ac := &types.AnalysisContext{}
	data, err := harparse.Parse(ctx, exchanges, cfg, ac)
	if err != nil {
		return fmt.Errorf("normalizing exchanges: %w", err)
	}
	for _, w := range ac.Warnings {
		slog.Debug("parse warning", "kind", w.Kind, "context", w.Context, "msg", w.Msg)
	}
	if len(data.Requests) == 0 {
		return types.NewError(types.NoInternalApi, "no internal API traffic survived noise filtering", nil)
	}

	rawBodiesAvailable := hasRawBodies(exchanges)

	data.Auth = authextract.Extract(data.Service, data.Requests, nil, htmlBodiesOf(exchanges), nil)

	data, idx := enrich.Enrich(data, cfg)
	slog.Info("built traffic index",
		"requests", len(idx.Requests()),
		"candidate_base_urls", len(data.BaseURLs),
		"service", data.Service,
		"base_url", data.BaseURL,
	)
	idx.BuildCategoryFacet(categoryByKey(data.EndpointGroups))
	slog.Debug("traffic index facets",
		"4xx", bitmapCount(idx.StatusBucket(4)),
		"5xx", bitmapCount(idx.StatusBucket(5)),
		"auth_category", bitmapCount(idx.Category("auth")),
	)

	var describer describe.Describer = describe.NoOp{}
	if filter := os.Getenv("DESCRIBE_JQ_FILTER"); filter != "" {
		describer = &describe.JQ{Filter: filter}
	}
	described, err := describer.Describe(ctx, data.EndpointGroups)
	if err != nil {
		slog.Warn("describe extension point failed, keeping heuristic descriptions", "error", err)
	} else {
		data.EndpointGroups = described
	}

	analysis := analyzer.Analyze(data, rawBodiesAvailable)
	slog.Info("analysis complete",
		"entities", len(analysis.Entities),
		"auth_flows", len(analysis.AuthFlows),
		"api_style", analysis.APIStyle,
		"confidence", analysis.Confidence,
	)

	suggestions := prober.Probe(data.EndpointGroups, data.Auth, cfg)
	slog.Info("probe suggestions generated", "count", len(suggestions))

	serviceDir := filepath.Join(outDir, data.Service)
	pkg, diff, changed, err := skillbuilder.Build(data, analysis, serviceDir)
	if err != nil {
		return fmt.Errorf("building skill package: %w", err)
	}
	if err := skillbuilder.Publish(serviceDir, pkg, changed); err != nil {
		return fmt.Errorf("publishing skill package: %w", err)
	}
	slog.Info("skill package published", "service", data.Service, "dir", serviceDir, "diff", diff, "version_hash", pkg.VersionHash)

	return writeAnalysisArtifacts(serviceDir, analysis, suggestions)
}

func writeAnalysisArtifacts(dir string, analysis *types.AgenticAnalysis, suggestions []types.Suggestion) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	analysisJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis.json"), analysisJSON, 0o644); err != nil {
		return fmt.Errorf("writing analysis.json: %w", err)
	}
	suggestionsJSON, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling suggestions: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "probe_suggestions.json"), suggestionsJSON, 0o644)
}

func hasRawBodies(exchanges []types.Exchange) bool {
	for i := range exchanges {
		if exchanges[i].ResponseBody != nil && exchanges[i].ResponseBody.Text != "" {
			return true
		}
	}
	return false
}

func htmlBodiesOf(exchanges []types.Exchange) []string {
	var out []string
	for i := range exchanges {
		body := exchanges[i].ResponseBody
		if body == nil {
			continue
		}
		if body.MimeType == "text/html" {
			out = append(out, body.Text)
		}
	}
	return out
}

func bitmapCount(bm *roaring.Bitmap) uint64 {
	if bm == nil {
		return 0
	}
	return bm.GetCardinality()
}

func categoryByKey(groups []types.EndpointGroup) map[string]string {
	out := make(map[string]string, len(groups))
	for i := range groups {
		out[groups[i].Method+" "+groups[i].NormalizedPath] = groups[i].Category
	}
	return out
}
