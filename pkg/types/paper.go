// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Placeholder values written for empty fields.
const (
	NotAvailable     = "N/A"
	NoneValue        = "None"
	EmailUnavailable = "Not Available"
)

// PaperResult is the single record shape that flows out of the pipeline:
// one row of console or CSV output per PubMed ID.
type PaperResult struct {
	PubmedID            string   `json:"pubmed_id" yaml:"pubmed_id"`
	Title               string   `json:"title" yaml:"title"`
	PublicationDate     string   `json:"publication_date" yaml:"publication_date"`
	NonAcademicAuthors  []string `json:"non_academic_authors" yaml:"non_academic_authors"`
	CompanyAffiliations []string `json:"company_affiliations" yaml:"company_affiliations"`

	// CorrespondingEmail is a heuristic pick from affiliation text and may
	// belong to any non-academic author, not necessarily the corresponding one.
	CorrespondingEmail string `json:"corresponding_email" yaml:"corresponding_email"`

	Summary string `json:"summary" yaml:"summary"`
}

// Row returns the seven output column values in header order, applying
// the placeholder rules for empty fields.
func (p PaperResult) Row() []string {
	return []string{
		orDefault(p.PubmedID, NotAvailable),
		orDefault(p.Title, NotAvailable),
		orDefault(p.PublicationDate, NotAvailable),
		orDefault(strings.Join(p.NonAcademicAuthors, ", "), NoneValue),
		orDefault(strings.Join(p.CompanyAffiliations, ", "), NoneValue),
		orDefault(p.CorrespondingEmail, EmailUnavailable),
		p.Summary,
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
