// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package affiliation classifies author affiliations as academic or not by
// keyword matching and picks out contact emails from affiliation text.
package affiliation

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// DefaultAcademicKeywords mark an affiliation as institutional.
var DefaultAcademicKeywords = []string{"university", "institute", "college", "labs"}

const unknownAuthor = "Unknown"

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)

// Result holds the non-academic authors of one paper.
type Result struct {
	// Authors are the names of non-academic authors in byline order.
	Authors []string

	// Companies are the distinct non-academic affiliations, first seen first.
	Companies []string

	// Email is the last email address found in a non-academic affiliation.
	Email string
}

// Classifier matches affiliations against a keyword set.
type Classifier struct {
	keywords []string
}

// NewClassifier returns a Classifier for keywords, or for
// DefaultAcademicKeywords when keywords is empty. Matching ignores case.
func NewClassifier(keywords []string) *Classifier {
	var kw []string
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) == 0 {
		kw = DefaultAcademicKeywords
	}
	return &Classifier{keywords: kw}
}

// Keywords returns the effective keyword set.
func (c *Classifier) Keywords() []string {
	return append([]string(nil), c.keywords...)
}

// IsAcademic reports whether aff contains any academic keyword.
func (c *Classifier) IsAcademic(aff string) bool {
	lower := strings.ToLower(aff)
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Extract collects the authors whose affiliation lacks every academic
// keyword. An author counts once, under their first non-academic
// affiliation. Authors without any affiliation are left out: there is
// nothing to classify.
func (c *Classifier) Extract(authors []types.Author) Result {
	var res Result
	seen := make(map[string]bool)

	for _, a := range authors {
		company := ""
		for _, aff := range a.Affiliations {
			aff = strings.TrimSpace(aff)
			if aff == "" || c.IsAcademic(aff) {
				continue
			}
			if company == "" {
				company = aff
			}
			if email := FindEmail(aff); email != "" {
				res.Email = email
			}
		}
		if company == "" {
			// No affiliation text counts as unknown, not non-academic.
			// esummary authors never carry affiliations.
			continue
		}

		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = unknownAuthor
		}
		res.Authors = append(res.Authors, name)

		if !seen[company] {
			seen[company] = true
			res.Companies = append(res.Companies, company)
		}
	}
	return res
}

// FindEmail returns the last email address in text, or "".
func FindEmail(text string) string {
	matches := emailPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimRight(matches[len(matches)-1], ".-")
}
