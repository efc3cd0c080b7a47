// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch runs the paper-fetcher pipeline: refine the query, search
// PubMed, then build one result row per paper with an LLM summary and the
// non-academic author heuristic applied.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/paper-fetcher/internal/affiliation"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// Source finds and loads PubMed documents. *pubmed.Client implements it.
type Source interface {
	Search(ctx context.Context, term string) ([]string, error)
	Document(ctx context.Context, pmid string) (types.Document, error)
}

// QueryEnhancer rewrites a query; it returns the input on failure.
type QueryEnhancer interface {
	Enhance(ctx context.Context, query string) string
}

// AbstractSummarizer summarizes text; it returns fallback text on failure.
type AbstractSummarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Pipeline wires the stages together. All fields except Logger are required.
type Pipeline struct {
	Source     Source
	Enhancer   QueryEnhancer
	Summarizer AbstractSummarizer
	Classifier *affiliation.Classifier
	Logger     *slog.Logger
}

// Result is the outcome of one run.
type Result struct {
	Query        string
	RefinedQuery string
	StartedAt    time.Time
	Papers       []types.PaperResult
}

// Run executes the pipeline for query. Papers come back in search order.
// Any PubMed error aborts the run; LLM failures never do.
func (p *Pipeline) Run(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, fmt.Errorf("query is empty")
	}

	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	res := Result{Query: query, StartedAt: time.Now().UTC()}

	log.Info("fetching papers", "query", query)
	res.RefinedQuery = p.Enhancer.Enhance(ctx, query)
	log.Info("refined query", "refined", res.RefinedQuery)

	ids, err := p.Source.Search(ctx, res.RefinedQuery)
	if err != nil {
		return res, fmt.Errorf("searching PubMed: %w", err)
	}
	log.Info("search complete", "ids", len(ids))

	res.Papers = make([]types.PaperResult, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		doc, err := p.Source.Document(ctx, id)
		if err != nil {
			return res, fmt.Errorf("fetching paper %s: %w", id, err)
		}

		paper := p.buildResult(ctx, id, doc)
		log.Debug("paper processed",
			"position", i+1, "pmid", paper.PubmedID,
			"non_academic_authors", len(paper.NonAcademicAuthors))
		res.Papers = append(res.Papers, paper)
	}

	return res, nil
}

func (p *Pipeline) buildResult(ctx context.Context, id string, doc types.Document) types.PaperResult {
	text := doc.Abstract
	if strings.TrimSpace(text) == "" {
		text = doc.Title
	}

	aff := p.Classifier.Extract(doc.Authors)

	pmid := doc.PMID
	if pmid == "" {
		pmid = id
	}

	return types.PaperResult{
		PubmedID:            pmid,
		Title:               doc.Title,
		PublicationDate:     doc.PubDate,
		NonAcademicAuthors:  aff.Authors,
		CompanyAffiliations: aff.Companies,
		CorrespondingEmail:  aff.Email,
		Summary:             p.Summarizer.Summarize(ctx, text),
	}
}
