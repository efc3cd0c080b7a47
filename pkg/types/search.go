// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-fetcher pipeline:
// the per-paper output record, the intermediate PubMed document view, and
// the configuration structs for each stage.
package types

// Document is the merged view of one PubMed record, built from an
// esummary document and the efetch article for the same PMID.
type Document struct {
	// PMID is the PubMed identifier (esummary "uid").
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title with inline markup removed.
	Title string `json:"title" yaml:"title"`

	// PubDate is the publication date exactly as PubMed reports it
	// (e.g. "2023 Mar 14", "2021"), so it is kept as a string.
	PubDate string `json:"pubdate" yaml:"pubdate"`

	// Authors lists the article authors in byline order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Abstract is the abstract text. Structured abstracts are flattened
	// with their section labels.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Author is one author as reported by PubMed.
type Author struct {
	Name         string   `json:"name" yaml:"name"`
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
}
