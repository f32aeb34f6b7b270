package drafting

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/cars24/connector-cli/pkg/openai"
)

// Analysis is the structured outcome of reading a customer's notes to
// understand why no deposit followed the test drive.
type Analysis struct {
	Summary   string `json:"summary"`
	Category  string `json:"category"`
	NextSteps string `json:"next_steps"`
}

// Categories the analyst must choose from.
var AnalysisCategories = []string{
	"Price/Finance Issues",
	"Vehicle Condition/Quality",
	"Customer Not Ready",
	"Comparison Shopping",
	"Feature/Specification Issues",
	"Trust/Service Issues",
	"External Factors",
	"Already Purchased Elsewhere",
	"Changed Mind/Lost Interest",
	"No clear reason documented",
}

const analysisSystemPrompt = `You are analyzing customer interaction notes from a car dealership to understand why customers didn't pay a deposit after test drives.

CRITICAL: You must respond with ONLY valid JSON in exactly this format - no extra text, no explanations, just the JSON:

{
  "summary": "1-2 line summary of what specifically happened during customer interaction and why deposit was not paid",
  "category": "choose one category from the list below",
  "next_steps": "specific actionable next step for the sales team to re-engage this customer"
}

Categories (choose exactly one):
- Price/Finance Issues
- Vehicle Condition/Quality
- Customer Not Ready
- Comparison Shopping
- Feature/Specification Issues
- Trust/Service Issues
- External Factors
- Already Purchased Elsewhere
- Changed Mind/Lost Interest
- No clear reason documented

Rules:
- Response must be valid JSON only
- Keep summary under 150 characters
- Keep next_steps under 100 characters
- Use only the categories listed above exactly as written`

// AnalyzeNotes summarizes why a customer did not proceed. It never
// fails: malformed model output degrades to a best-effort Analysis.
func (d *Drafter) AnalyzeNotes(ctx context.Context, notes, customerName, vehicle string) Analysis {
	if strings.TrimSpace(notes) == "" || notes == "No notes" {
		return Analysis{
			Summary:   "No notes available for analysis",
			Category:  "No clear reason documented",
			NextSteps: "Contact customer to understand their experience",
		}
	}

	user := "Customer: " + customerName + "\nVehicle: " + vehicle +
		"\n\nCustomer interaction notes from dealership:\n" + notes +
		"\n\nAnalyze why this customer didn't pay a deposit after their test drive and what the sales team should do next."

	text, err := d.llm.Complete(ctx, openai.Request{
		System:      analysisSystemPrompt,
		User:        user,
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		zap.L().Warn("drafting: notes analysis failed", zap.Error(err))
		return Analysis{
			Summary:   "Analysis failed",
			Category:  "Analysis failed",
			NextSteps: "Review notes manually and contact customer",
		}
	}

	var out Analysis
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		if fixed, ok := extractJSON(text); ok {
			if err := json.Unmarshal([]byte(fixed), &out); err == nil {
				return fillAnalysis(out)
			}
		}
		return fallbackAnalysis(text)
	}
	return fillAnalysis(out)
}

func fillAnalysis(a Analysis) Analysis {
	if a.Summary == "" {
		a.Summary = "Analysis incomplete"
	}
	if a.Category == "" {
		a.Category = "No clear reason documented"
	}
	if a.NextSteps == "" {
		a.NextSteps = "Review customer interaction manually"
	}
	return a
}

// extractJSON trims any prose surrounding the outermost JSON object.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// fallbackAnalysis salvages what it can from non-JSON model output.
func fallbackAnalysis(raw string) Analysis {
	a := Analysis{
		Summary:   "Analysis incomplete due to formatting issues",
		Category:  "No clear reason documented",
		NextSteps: "Review notes manually and contact customer",
	}
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "summary") || strings.Contains(lower, "what happened") || strings.Contains(lower, "customer") {
			if trimmed := strings.TrimSpace(line); len(trimmed) > 10 {
				if len(trimmed) > 100 {
					trimmed = trimmed[:100]
				}
				a.Summary = trimmed
				break
			}
		}
	}
	return a
}
