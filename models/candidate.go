package models

import "time"

// Candidate ist ein Eintrag aus einer externen Quelle, der noch nicht im Katalog steht.
type Candidate struct {
	ArxivID    string    `json:"arxiv_id" yaml:"arxivId"`
	Title      string    `json:"title" yaml:"title"`
	Abstract   string    `json:"abstract" yaml:"abstract"`
	Authors    string    `json:"authors" yaml:"authors"`
	Categories []string  `json:"categories" yaml:"categories"`
	URL        string    `json:"url" yaml:"url"`
	Published  time.Time `json:"published" yaml:"published"`
}
