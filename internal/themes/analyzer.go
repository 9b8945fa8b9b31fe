// Package themes aggregates retrieved chunks into a cross-document theme
// report via the text-generation capability, degrading gracefully when that
// capability is missing or returns something unparseable.
package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ragchat/internal/contextutil"
	"ragchat/internal/llm"
	"ragchat/internal/processor"
)

// DefaultContentLimit bounds the prompt size for theme analysis.
const DefaultContentLimit = 10000

const promptTemplate = `Analyze the following document excerpts and identify common themes related to the query: %q

Document excerpts:
%s

Please provide:
1. A list of 3-5 main themes/topics that appear across these documents
2. A brief summary of how these themes relate to the query
3. Key insights or patterns you notice

Format your response as JSON with the following structure:
{
    "themes": [
        {"name": "Theme Name", "description": "Brief description", "frequency": "how often it appears"}
    ],
    "summary": "Overall summary of themes",
    "insights": ["Key insight 1", "Key insight 2"]
}`

// Theme is one identified topic across the retrieved documents.
type Theme struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

// Report is the outcome of theme analysis. It is always well-formed: every
// failure mode maps to a degenerate but valid report.
type Report struct {
	Themes   []Theme  `json:"themes"`
	Summary  string   `json:"summary"`
	Insights []string `json:"insights,omitempty"`
}

// Analyzer runs theme analysis over search results.
type Analyzer struct {
	generator    llm.TextGenerator // nil disables analysis
	contentLimit int
}

func NewAnalyzer(generator llm.TextGenerator, contentLimit int) *Analyzer {
	if contentLimit <= 0 {
		contentLimit = DefaultContentLimit
	}
	return &Analyzer{generator: generator, contentLimit: contentLimit}
}

// Analyze produces a theme report for the query over the given results.
// It never returns an error: without a generator or results the report is
// the degenerate default, a malformed model response is wrapped as a single
// synthetic theme, and a generator failure yields an error report.
func (a *Analyzer) Analyze(ctx context.Context, query string, results []processor.CitationResult) Report {
	logger := contextutil.LoggerFromContext(ctx)

	if a.generator == nil || len(results) == 0 {
		return Report{Themes: []Theme{}, Summary: "Unable to analyze themes"}
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	combined := truncate(strings.Join(contents, "\n\n---\n\n"), a.contentLimit)

	response, err := a.generator.Complete(ctx, fmt.Sprintf(promptTemplate, query, combined))
	if err != nil {
		logger.ErrorContext(ctx, "theme analysis failed", "error", err)
		return Report{
			Themes: []Theme{{
				Name:        "Error",
				Description: fmt.Sprintf("Theme analysis failed: %v", err),
				Frequency:   "N/A",
			}},
			Summary:  "Unable to analyze themes due to an error",
			Insights: []string{},
		}
	}

	var report Report
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &report); err != nil {
		logger.WarnContext(ctx, "theme response not valid JSON, wrapping raw text", "error", err)
		return Report{
			Themes: []Theme{{
				Name:        "Analysis Available",
				Description: truncate(response, 200),
				Frequency:   "varies",
			}},
			Summary:  response,
			Insights: []string{"Theme analysis completed"},
		}
	}
	if report.Themes == nil {
		report.Themes = []Theme{}
	}
	return report
}

// stripCodeFence removes a surrounding markdown code fence, which chat models
// commonly wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most limit characters without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
