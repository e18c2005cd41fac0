package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/config"
	"paper-archive/models"
)

type stubProvider struct {
	candidates []models.Candidate
	err        error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Fetch(context.Context, []string) ([]models.Candidate, error) {
	return s.candidates, s.err
}

func candidate(title, authors, abstract string, cats ...string) models.Candidate {
	return models.Candidate{
		ArxivID:    "2510.00001",
		Title:      title,
		Authors:    authors,
		Abstract:   abstract,
		Categories: cats,
		URL:        "https://arxiv.org/abs/2510.00001",
		Published:  time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestDetectOrganization(t *testing.T) {
	org, ok := DetectOrganization("Jane Doe (Google DeepMind)", "")
	require.True(t, ok)
	assert.Equal(t, models.OrgDeepMind, org)

	org, ok = DetectOrganization("", "We release Qwen models")
	require.True(t, ok)
	assert.Equal(t, models.OrgAlibaba, org)

	_, ok = DetectOrganization("Some Person", "nothing relevant")
	assert.False(t, ok)
}

func TestScore(t *testing.T) {
	c := candidate("Reasoning Agents", "DeepSeek-AI", "we study reasoning")
	// org 15 + reasoning 3 + agent 3
	assert.Equal(t, 21, Score(c))
	assert.Equal(t, 0, Score(candidate("Plain", "Nobody", "nothing")))
}

func TestDetectDomains(t *testing.T) {
	assert.Equal(t, []models.Domain{models.DomainLLM}, DetectDomains(candidate("x", "", "")))
	assert.Equal(t,
		[]models.Domain{models.DomainLLM, models.DomainEfficiency, models.DomainVision},
		DetectDomains(candidate("video", "", "", "cs.LG", "cs.CV")))
	assert.Equal(t,
		[]models.Domain{models.DomainAgent, models.DomainReasoning, models.DomainRAG},
		DetectDomains(candidate("retrieval agents", "", "", "cs.AI")))
}

func TestExtractTags(t *testing.T) {
	tags := ExtractTags(candidate("Mixture of Experts for reasoning agent safety with math benchmark", "", ""))
	assert.Equal(t, []string{"reasoning", "agent", "mixture-of-experts", "safety", "math"}, tags)
	assert.Empty(t, ExtractTags(candidate("plain", "", "")))
}

func TestGenerateID(t *testing.T) {
	assert.Equal(t, "deepseekr1-incentivizing-reasoning-capability", GenerateID("DeepSeek-R1: Incentivizing Reasoning Capability in LLMs"))
	assert.Equal(t, "short-title", GenerateID("Short Title!"))
	assert.Equal(t, "", GenerateID("???"))
}

func TestClassify(t *testing.T) {
	p, ok := Classify(candidate("Efficient Reasoning Agents", "OpenAI", "An agent study", "cs.AI"), 10)
	require.True(t, ok)
	assert.Equal(t, "efficient-reasoning-agents", p.ID)
	assert.Equal(t, models.OrgOpenAI, p.Organization)
	assert.Equal(t, "2025-10", p.Date)
	assert.NoError(t, p.Validate())

	_, ok = Classify(candidate("Reasoning agents", "Nobody", "efficient math benchmark safety"), 10)
	assert.False(t, ok, "no organization")

	_, ok = Classify(candidate("Agents for dark matter", "OpenAI", ""), 10)
	assert.False(t, ok, "excluded topic")

	_, ok = Classify(candidate("Plain", "OpenAI", ""), 20)
	assert.False(t, ok, "below min score")
}

func TestImportServiceRun(t *testing.T) {
	cat, err := catalog.New([]models.Paper{{
		ID: "efficient-reasoning-agents", Title: "x", Organization: models.OrgMeta, Date: "2024-01",
	}})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "pending.yaml")
	cfg := &config.Config{
		ImportCategories: "cs.AI",
		ImportOutput:     out,
		ImportMinScore:   10,
		ImportMaxNew:     1,
	}
	provider := stubProvider{candidates: []models.Candidate{
		candidate("Efficient Reasoning Agents", "OpenAI", ""),
		candidate("Safety of Multimodal Reasoning Agents", "Anthropic", "alignment"),
		candidate("Agent Benchmarks", "Meta AI", ""),
		candidate("Unrelated", "Nobody", ""),
	}}
	svc := NewImportService(cfg, cat, provider, zap.NewNop())

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 3, res.Relevant)
	assert.Equal(t, []string{"safety-of-multimodal-reasoning"}, res.Added)

	pending, err := LoadPending(out)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.OrgAnthropic, pending[0].Organization)

	// A second run keeps the file and adds the next best candidate only once.
	res, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"agent-benchmarks"}, res.Added)
	pending, err = LoadPending(out)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	res, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Added)
}

func TestImportServiceProviderError(t *testing.T) {
	cfg := &config.Config{ImportCategories: "cs.AI", ImportOutput: filepath.Join(t.TempDir(), "p.yaml")}
	cat, err := catalog.New(nil)
	require.NoError(t, err)

	svc := NewImportService(cfg, cat, stubProvider{err: errors.New("offline")}, zap.NewNop())
	_, err = svc.Run(context.Background())
	assert.Error(t, err)
}

func TestLoadPendingMissingFile(t *testing.T) {
	got, err := LoadPending(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportServiceRunNegativeLimit(t *testing.T) {
	cat, err := catalog.New(nil)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "pending.yaml")
	cfg := &config.Config{ImportCategories: "cs.AI", ImportOutput: out, ImportMinScore: 10, ImportMaxNew: -1}
	provider := stubProvider{candidates: []models.Candidate{
		candidate("Efficient Reasoning Agents", "OpenAI", ""),
		candidate("Agent Benchmarks", "Meta AI", ""),
	}}

	var res ImportResult
	require.NotPanics(t, func() {
		res, err = NewImportService(cfg, cat, provider, zap.NewNop()).Run(context.Background())
	})
	require.NoError(t, err)
	assert.Len(t, res.Added, 2)
}
