package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"daybrief-backend/internal/models"
)

const fallbackConfidence = 0.3

// parseStage returns ok=false to hand the content to the next stage.
type parseStage struct {
	name  string
	parse func(content string) (models.SummaryOutput, bool)
}

var pipeline = []parseStage{
	{"direct", parseDirect},
	{"fenced", parseFenced},
	{"fallback", parseFallback},
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Parse runs the stages in order and reports which one produced the output.
func Parse(content string) (models.SummaryOutput, string) {
	for _, st := range pipeline {
		if out, ok := st.parse(content); ok {
			return out, st.name
		}
	}
	return models.SummaryOutput{ActionItems: []string{}}, "none"
}

type wireOutput struct {
	SummaryMd   *string   `json:"summaryMd"`
	ActionItems *[]string `json:"actionItems"`
	Confidence  *float64  `json:"confidence"`
}

func decodeStrict(raw string) (models.SummaryOutput, bool) {
	var w wireOutput
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return models.SummaryOutput{}, false
	}
	if w.SummaryMd == nil || w.ActionItems == nil || w.Confidence == nil {
		return models.SummaryOutput{}, false
	}
	return models.SummaryOutput{
		SummaryMd:   *w.SummaryMd,
		ActionItems: *w.ActionItems,
		Confidence:  clamp(*w.Confidence),
	}, true
}

func parseDirect(content string) (models.SummaryOutput, bool) {
	return decodeStrict(strings.TrimSpace(content))
}

func parseFenced(content string) (models.SummaryOutput, bool) {
	m := fencedJSON.FindStringSubmatch(content)
	if m == nil {
		return models.SummaryOutput{}, false
	}
	return decodeStrict(m[1])
}

func parseFallback(content string) (models.SummaryOutput, bool) {
	if strings.TrimSpace(content) == "" {
		return models.SummaryOutput{}, false
	}
	return models.SummaryOutput{SummaryMd: content, ActionItems: []string{}, Confidence: fallbackConfidence}, true
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
