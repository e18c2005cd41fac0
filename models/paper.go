package models

import (
	"fmt"
	"regexp"
)

// Organization ist die Institution, aus der ein Paper stammt.
type Organization string

const (
	OrgDeepSeek  Organization = "DeepSeek"
	OrgDeepMind  Organization = "DeepMind"
	OrgAlibaba   Organization = "Alibaba"
	OrgOpenAI    Organization = "OpenAI"
	OrgAnthropic Organization = "Anthropic"
	OrgMeta      Organization = "Meta"
	OrgGoogle    Organization = "Google"
	OrgMicrosoft Organization = "Microsoft"
	OrgMIT       Organization = "MIT"
	OrgStanford  Organization = "Stanford"
	OrgBerkeley  Organization = "Berkeley"
	OrgCMU       Organization = "CMU"
	OrgPrinceton Organization = "Princeton"
	OrgTsinghua  Organization = "Tsinghua"
	OrgPeking    Organization = "Peking"
)

// Organizations listet alle bekannten Organisationen in Anzeigereihenfolge.
var Organizations = []Organization{
	OrgDeepSeek, OrgDeepMind, OrgOpenAI, OrgAnthropic, OrgMeta, OrgAlibaba,
	OrgMIT, OrgGoogle, OrgMicrosoft, OrgStanford, OrgBerkeley,
	OrgCMU, OrgPrinceton, OrgTsinghua, OrgPeking,
}

// Valid meldet, ob die Organisation zur festen Aufzählung gehört.
func (o Organization) Valid() bool {
	for _, known := range Organizations {
		if o == known {
			return true
		}
	}
	return false
}

// Domain ist ein thematisches Schlagwort aus einer festen Aufzählung.
type Domain string

const (
	DomainLLM        Domain = "LLM"
	DomainReasoning  Domain = "Reasoning"
	DomainVision     Domain = "Vision"
	DomainMultimodal Domain = "Multimodal"
	DomainRobotics   Domain = "Robotics"
	DomainAgent      Domain = "Agent"
	DomainRAG        Domain = "RAG"
	DomainScience    Domain = "Science"
	DomainHealthcare Domain = "Healthcare"
	DomainEfficiency Domain = "Efficiency"
)

// Domains listet alle Domains in deklarierter Reihenfolge.
var Domains = []Domain{
	DomainLLM, DomainReasoning, DomainVision, DomainMultimodal, DomainRobotics,
	DomainAgent, DomainRAG, DomainScience, DomainHealthcare, DomainEfficiency,
}

// Valid meldet, ob die Domain zur festen Aufzählung gehört.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

var monthExpr = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Paper repräsentiert ein archiviertes Forschungspaper samt Beziehungen.
type Paper struct {
	ID           string       `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	TitleKo      string       `json:"titleKo,omitempty" yaml:"titleKo,omitempty"`
	Organization Organization `json:"organization" yaml:"organization"`
	// YYYY-MM, lexikographisch sortierbar
	Date      string `json:"date" yaml:"date"`
	ArxivURL  string `json:"arxivUrl,omitempty" yaml:"arxivUrl,omitempty"`
	GithubURL string `json:"githubUrl,omitempty" yaml:"githubUrl,omitempty"`

	Summary          string `json:"summary" yaml:"summary"`
	KeyInnovation    string `json:"keyInnovation" yaml:"keyInnovation"`
	PracticalInsight string `json:"practicalInsight" yaml:"practicalInsight"`

	Domains []Domain `json:"domains" yaml:"domains"`
	Tags    []string `json:"tags" yaml:"tags"`

	// Gerichtete Referenzen auf andere Paper-IDs, dürfen ins Leere zeigen
	RelatedPapers []string `json:"relatedPapers,omitempty" yaml:"relatedPapers,omitempty"`
	BuildUpon     []string `json:"buildUpon,omitempty" yaml:"buildUpon,omitempty"`
}

// HasDomain prüft, ob das Paper der Domain zugeordnet ist.
func (p Paper) HasDomain(d Domain) bool {
	for _, own := range p.Domains {
		if own == d {
			return true
		}
	}
	return false
}

// HasTag prüft, ob das Paper den Tag trägt.
func (p Paper) HasTag(tag string) bool {
	for _, own := range p.Tags {
		if own == tag {
			return true
		}
	}
	return false
}

// Validate prüft die Pflichtfelder und Aufzählungswerte eines Papers.
func (p Paper) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("paper %q: empty id", p.Title)
	}
	if p.Title == "" {
		return fmt.Errorf("paper %s: empty title", p.ID)
	}
	if !p.Organization.Valid() {
		return fmt.Errorf("paper %s: unknown organization %q", p.ID, p.Organization)
	}
	if !monthExpr.MatchString(p.Date) {
		return fmt.Errorf("paper %s: date %q is not YYYY-MM", p.ID, p.Date)
	}
	for _, d := range p.Domains {
		if !d.Valid() {
			return fmt.Errorf("paper %s: unknown domain %q", p.ID, d)
		}
	}
	return nil
}
