// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

func TestIsAcademic(t *testing.T) {
	c := NewClassifier(nil)
	tests := []struct {
		aff  string
		want bool
	}{
		{"Department of Biology, Stanford University, CA", true},
		{"Broad INSTITUTE of MIT and Harvard", true},
		{"Imperial College London", true},
		{"Bell Labs, Murray Hill, NJ", true},
		{"Pfizer Inc., New York, NY", false},
		{"Genentech, South San Francisco", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.IsAcademic(tt.aff), "IsAcademic(%q)", tt.aff)
	}
}

func TestNewClassifierKeywords(t *testing.T) {
	assert.Equal(t, DefaultAcademicKeywords, NewClassifier(nil).Keywords())
	assert.Equal(t, DefaultAcademicKeywords, NewClassifier([]string{" ", ""}).Keywords())

	c := NewClassifier([]string{" Hospital ", "SCHOOL"})
	assert.Equal(t, []string{"hospital", "school"}, c.Keywords())
	assert.True(t, c.IsAcademic("Massachusetts General Hospital"))
	assert.False(t, c.IsAcademic("Stanford University"), "custom set replaces the defaults")
}

func TestExtract(t *testing.T) {
	authors := []types.Author{
		{Name: "Jane Doe", Affiliations: []string{
			"Verve Therapeutics, Boston, MA, USA. Electronic address: jdoe@vervetx.com.",
		}},
		{Name: "Richard Roe", Affiliations: []string{"Harvard University, Boston, MA"}},
		{Name: "Ann Poe", Affiliations: []string{
			"Broad Institute, Cambridge, MA",
			"Verve Therapeutics, Boston, MA, USA. Electronic address: jdoe@vervetx.com.",
		}},
		{Name: "", Affiliations: []string{"Moderna, Cambridge, MA. apoe@modernatx.com"}},
		{Name: "No Affiliation"},
	}

	got := NewClassifier(nil).Extract(authors)

	assert.Equal(t, []string{"Jane Doe", "Ann Poe", "Unknown"}, got.Authors)
	assert.Equal(t, []string{
		"Verve Therapeutics, Boston, MA, USA. Electronic address: jdoe@vervetx.com.",
		"Moderna, Cambridge, MA. apoe@modernatx.com",
	}, got.Companies)
	assert.Equal(t, "apoe@modernatx.com", got.Email, "the last email found wins")
}

func TestExtractAllAcademic(t *testing.T) {
	got := NewClassifier(nil).Extract([]types.Author{
		{Name: "A", Affiliations: []string{"University of Tokyo"}},
		{Name: "B", Affiliations: []string{"Pasteur Institute; jb@pasteur.fr"}},
	})
	assert.Empty(t, got.Authors)
	assert.Empty(t, got.Companies)
	assert.Empty(t, got.Email, "emails in academic affiliations are ignored")
}

func TestExtractNoAuthors(t *testing.T) {
	assert.Equal(t, Result{}, NewClassifier(nil).Extract(nil))
}

func TestExtractSkipsAuthorsWithoutAffiliation(t *testing.T) {
	c := NewClassifier(nil)
	res := c.Extract([]types.Author{
		{Name: "Doe J"},
		{Name: "Roe R", Affiliations: []string{"", "  "}},
		{Name: "Poe E", Affiliations: []string{"", "Pfizer Inc, New York, NY."}},
	})
	assert.Equal(t, []string{"Poe E"}, res.Authors)
	assert.Equal(t, []string{"Pfizer Inc, New York, NY."}, res.Companies)
	assert.Empty(t, res.Email)
}

func TestFindEmail(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"no address here", ""},
		{"Electronic address: a.b@corp.example.com.", "a.b@corp.example.com"},
		{"x@a.io and later y@b.co.uk", "y@b.co.uk"},
		{"contact: first-last+tag@sub-domain.org;", "first-last+tag@sub-domain.org"},
		{"handle @twitter only", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindEmail(tt.text), "FindEmail(%q)", tt.text)
	}
}
