package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"paper-archive/catalog"
	"paper-archive/config"
	"paper-archive/models"
	"paper-archive/providers"
)

type affiliation struct {
	org      models.Organization
	keywords []string
}

// Reihenfolge ist relevant: der erste Treffer gewinnt.
var affiliations = []affiliation{
	{models.OrgDeepMind, []string{"deepmind", "google deepmind"}},
	{models.OrgDeepSeek, []string{"deepseek"}},
	{models.OrgOpenAI, []string{"openai"}},
	{models.OrgAnthropic, []string{"anthropic"}},
	{models.OrgMeta, []string{"meta ai", "fair", "facebook ai"}},
	{models.OrgAlibaba, []string{"alibaba", "damo academy", "qwen"}},
	{models.OrgGoogle, []string{"google research", "google brain"}},
	{models.OrgMicrosoft, []string{"microsoft research", "microsoft"}},
	{models.OrgStanford, []string{"stanford"}},
	{models.OrgMIT, []string{"mit ", "massachusetts institute"}},
	{models.OrgBerkeley, []string{"berkeley", "uc berkeley"}},
	{models.OrgCMU, []string{"carnegie mellon", "cmu"}},
	{models.OrgPrinceton, []string{"princeton"}},
	{models.OrgTsinghua, []string{"tsinghua"}},
	{models.OrgPeking, []string{"peking university"}},
}

var hotKeywords = []string{
	"reasoning", "agent", "rlhf", "grpo", "moe", "mixture of experts",
	"long-context", "rag", "retrieval", "chain-of-thought", "cot",
	"instruction tuning", "alignment", "safety", "multimodal",
	"vision-language", "code generation", "math", "benchmark",
	"scaling law", "efficient", "sparse attention", "distillation",
	"world model", "embodied", "robotics", "video generation",
	"vlm", "vision language", "visual instruction", "image understanding",
	"visual reasoning", "visual question", "image-text", "text-to-image",
	"llava", "qwen-vl", "internvl", "cogvlm", "visual encoder",
	"image generation", "diffusion model", "stable diffusion",
}

var excludeKeywords = []string{
	"dark matter", "particle physics", "quantum field", "cosmology",
	"astrophysics", "condensed matter", "superconductor", "gravitational",
	"black hole", "neutrino", "hadron", "quark", "thermodynamic",
}

var categoryDomains = map[string][]models.Domain{
	"cs.CL": {models.DomainLLM},
	"cs.LG": {models.DomainLLM, models.DomainEfficiency},
	"cs.CV": {models.DomainVision},
	"cs.AI": {models.DomainAgent, models.DomainReasoning},
	"cs.MA": {models.DomainAgent},
	"cs.RO": {models.DomainRobotics},
}

var keywordDomains = []struct {
	keyword string
	domain  models.Domain
}{
	{"reasoning", models.DomainReasoning},
	{"agent", models.DomainAgent},
	{"rag", models.DomainRAG},
	{"retrieval", models.DomainRAG},
	{"multimodal", models.DomainMultimodal},
	{"vision", models.DomainVision},
	{"video", models.DomainVision},
	{"robotics", models.DomainRobotics},
	{"embodied", models.DomainRobotics},
	{"medical", models.DomainHealthcare},
	{"health", models.DomainHealthcare},
	{"protein", models.DomainScience},
	{"molecule", models.DomainScience},
	{"efficient", models.DomainEfficiency},
	{"sparse", models.DomainEfficiency},
	{"vlm", models.DomainMultimodal},
	{"vision language", models.DomainMultimodal},
	{"visual instruction", models.DomainMultimodal},
	{"image-text", models.DomainMultimodal},
	{"image generation", models.DomainVision},
	{"diffusion", models.DomainVision},
}

const (
	orgScore     = 15
	keywordScore = 3
	maxDomains   = 3
	maxTags      = 5
	summaryLimit = 300
)

// DetectOrganization sucht die erste bekannte Organisation in Autoren und Abstract.
func DetectOrganization(authors, abstract string) (models.Organization, bool) {
	text := strings.ToLower(authors + " " + abstract)
	for _, a := range affiliations {
		for _, kw := range a.keywords {
			if strings.Contains(text, kw) {
				return a.org, true
			}
		}
	}
	return "", false
}

// Score bewertet einen Kandidaten: 15 Punkte für eine bekannte Organisation, 3 pro Schlagwort.
func Score(c models.Candidate) int {
	score := 0
	if _, ok := DetectOrganization(c.Authors, c.Abstract); ok {
		score += orgScore
	}
	text := strings.ToLower(c.Title + " " + c.Abstract)
	for _, kw := range hotKeywords {
		if strings.Contains(text, kw) {
			score += keywordScore
		}
	}
	return score
}

// DetectDomains ordnet über Kategorien und Schlagworte höchstens drei Domains zu, Standard ist LLM.
func DetectDomains(c models.Candidate) []models.Domain {
	text := strings.ToLower(c.Title + " " + c.Abstract)
	var out []models.Domain
	seen := map[models.Domain]bool{}
	add := func(d models.Domain) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, cat := range c.Categories {
		for _, d := range categoryDomains[cat] {
			add(d)
		}
	}
	for _, kd := range keywordDomains {
		if strings.Contains(text, kd.keyword) {
			add(kd.domain)
		}
	}
	if len(out) == 0 {
		return []models.Domain{models.DomainLLM}
	}
	if len(out) > maxDomains {
		out = out[:maxDomains]
	}
	return out
}

// ExtractTags liefert bis zu fünf gefundene Schlagworte mit Bindestrichen statt Leerzeichen.
func ExtractTags(c models.Candidate) []string {
	text := strings.ToLower(c.Title + " " + c.Abstract)
	tags := []string{}
	for _, kw := range hotKeywords {
		if len(tags) == maxTags {
			break
		}
		if strings.Contains(text, kw) {
			tags = append(tags, strings.NewReplacer(" ", "-", "_", "-").Replace(kw))
		}
	}
	return tags
}

var nonAlnumExpr = regexp.MustCompile(`[^a-z0-9\s]`)

// GenerateID bildet die ID aus den ersten vier Wörtern des Titels.
func GenerateID(title string) string {
	clean := nonAlnumExpr.ReplaceAllString(strings.ToLower(title), "")
	words := strings.Fields(clean)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, "-")
}

func excluded(c models.Candidate) bool {
	text := strings.ToLower(c.Title + " " + c.Abstract)
	for _, kw := range excludeKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// PendingPaper ist ein Vorschlag für die Review-Datei.
type PendingPaper struct {
	models.Paper `yaml:",inline"`
	Score        int    `json:"score" yaml:"score"`
	Authors      string `json:"authors" yaml:"authors"`
}

// Classify wandelt einen Kandidaten in einen Vorschlag um oder verwirft ihn.
func Classify(c models.Candidate, minScore int) (PendingPaper, bool) {
	score := Score(c)
	if score < minScore {
		return PendingPaper{}, false
	}
	org, ok := DetectOrganization(c.Authors, c.Abstract)
	if !ok {
		return PendingPaper{}, false
	}
	if excluded(c) {
		return PendingPaper{}, false
	}
	id := GenerateID(c.Title)
	if id == "" {
		return PendingPaper{}, false
	}

	summary := []rune(strings.TrimSpace(c.Abstract))
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}
	authors := []rune(c.Authors)
	if len(authors) > 200 {
		authors = authors[:200]
	}

	return PendingPaper{
		Paper: models.Paper{
			ID:           id,
			Title:        strings.TrimSpace(c.Title),
			Organization: org,
			Date:         c.Published.UTC().Format("2006-01"),
			ArxivURL:     c.URL,
			Summary:      string(summary),
			Domains:      DetectDomains(c),
			Tags:         ExtractTags(c),
		},
		Score:   score,
		Authors: string(authors),
	}, true
}

// ImportResult fasst einen Importlauf zusammen.
type ImportResult struct {
	Fetched  int      `json:"fetched"`
	Relevant int      `json:"relevant"`
	Added    []string `json:"added"`
}

// ImportService sammelt neue Kandidaten und schreibt sie in eine Review-Datei.
// Der Katalog selbst wird nie verändert.
type ImportService struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Provider providers.Provider
	Logger   *zap.Logger
}

// NewImportService erstellt eine neue Instanz des ImportService.
func NewImportService(cfg *config.Config, cat *catalog.Catalog, provider providers.Provider, logger *zap.Logger) *ImportService {
	return &ImportService{
		Config:   cfg,
		Catalog:  cat,
		Provider: provider,
		Logger:   logger.With(zap.String("component", "importer")),
	}
}

// Run führt einen vollständigen Importlauf aus.
func (s *ImportService) Run(ctx context.Context) (ImportResult, error) {
	ctx, span := otel.Tracer("paper-archive").Start(ctx, "import.run")
	defer span.End()

	var res ImportResult
	log := s.Logger.With(zap.String("provider", s.Provider.Name()))

	candidates, err := s.Provider.Fetch(ctx, s.Config.Categories())
	if err != nil {
		log.Error("Provider-Abruf fehlgeschlagen", zap.Error(err))
		return res, err
	}
	res.Fetched = len(candidates)

	pending, err := LoadPending(s.Config.ImportOutput)
	if err != nil {
		return res, err
	}
	known := map[string]bool{}
	for _, p := range pending {
		known[p.ID] = true
	}

	var proposals []PendingPaper
	for _, c := range candidates {
		p, ok := Classify(c, s.Config.ImportMinScore)
		if !ok {
			continue
		}
		res.Relevant++
		if s.Catalog.Has(p.ID) || known[p.ID] {
			log.Debug("Paper bereits bekannt, wird übersprungen", zap.String("id", p.ID))
			continue
		}
		known[p.ID] = true
		proposals = append(proposals, p)
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].Score > proposals[j].Score
	})
	// Ein negatives Limit begrenzt nicht
	if s.Config.ImportMaxNew >= 0 && len(proposals) > s.Config.ImportMaxNew {
		proposals = proposals[:s.Config.ImportMaxNew]
	}
	if len(proposals) == 0 {
		log.Info("Keine neuen Paper gefunden", zap.Int("fetched", res.Fetched))
		return res, nil
	}

	if err := WritePending(s.Config.ImportOutput, append(pending, proposals...)); err != nil {
		return res, err
	}
	for _, p := range proposals {
		res.Added = append(res.Added, p.ID)
		log.Info("Neues Paper vorgeschlagen", zap.String("id", p.ID),
			zap.String("organization", string(p.Organization)), zap.Int("score", p.Score))
	}
	return res, nil
}

// LoadPending liest die Review-Datei; eine fehlende Datei ist leer.
func LoadPending(path string) ([]PendingPaper, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending papers: %w", err)
	}
	var out []PendingPaper
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode pending papers: %w", err)
	}
	return out, nil
}

// WritePending schreibt die Review-Datei vollständig neu.
func WritePending(path string, papers []PendingPaper) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return fmt.Errorf("encode pending papers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pending papers: %w", err)
	}
	return nil
}
