// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// Article is the subset of an efetch PubmedArticle that esummary lacks.
type Article struct {
	PMID     string
	Title    string
	Abstract string
	Authors  []types.Author
}

// PubMed XML structures. Text-bearing elements are read as inner XML
// because titles and abstracts carry inline markup (<i>, <sup>, ...)
// that chardata would drop along with its text.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID    string        `xml:"MedlineCitation>PMID"`
	Article articleRecord `xml:"MedlineCitation>Article"`
}

type articleRecord struct {
	Title    innerText      `xml:"ArticleTitle"`
	Abstract []abstractText `xml:"Abstract>AbstractText"`
	Authors  []xmlAuthor    `xml:"AuthorList>Author"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",innerxml"`
}

type innerText struct {
	Text string `xml:",innerxml"`
}

type xmlAuthor struct {
	LastName       string      `xml:"LastName"`
	ForeName       string      `xml:"ForeName"`
	Initials       string      `xml:"Initials"`
	CollectiveName innerText   `xml:"CollectiveName"`
	Affiliations   []innerText `xml:"AffiliationInfo>Affiliation"`
}

func (a xmlAuthor) name() string {
	if c := cleanText(a.CollectiveName.Text); c != "" {
		return c
	}
	switch {
	case a.ForeName != "":
		return strings.TrimSpace(a.ForeName + " " + a.LastName)
	case a.Initials != "":
		return strings.TrimSpace(a.LastName + " " + a.Initials)
	default:
		return a.LastName
	}
}

// Details fetches the efetch XML record for pmid and returns its abstract
// and authors with affiliations. A record with no abstract is not an error.
func (c *Client) Details(ctx context.Context, pmid string) (Article, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"xml"},
	}

	body, err := c.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return Article{}, err
	}

	return parseArticle(body, pmid)
}

func parseArticle(body []byte, pmid string) (Article, error) {
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return Article{}, fmt.Errorf("parsing efetch response for %s: %w", pmid, err)
	}

	for _, pa := range set.Articles {
		if strings.TrimSpace(pa.PMID) != pmid {
			continue
		}
		return toArticle(pa), nil
	}
	// Book chapters and withdrawn records come back as an empty set.
	return Article{PMID: pmid}, nil
}

func toArticle(pa pubmedArticle) Article {
	art := Article{
		PMID:     strings.TrimSpace(pa.PMID),
		Title:    cleanText(pa.Article.Title.Text),
		Abstract: joinAbstract(pa.Article.Abstract),
	}
	for _, xa := range pa.Article.Authors {
		author := types.Author{Name: xa.name()}
		for _, aff := range xa.Affiliations {
			if s := cleanText(aff.Text); s != "" {
				author.Affiliations = append(author.Affiliations, s)
			}
		}
		art.Authors = append(art.Authors, author)
	}
	return art
}

// joinAbstract flattens structured abstracts as "LABEL: text" paragraphs.
func joinAbstract(parts []abstractText) string {
	var sections []string
	for _, p := range parts {
		text := cleanText(p.Text)
		if text == "" {
			continue
		}
		if p.Label != "" {
			text = p.Label + ": " + text
		}
		sections = append(sections, text)
	}
	return strings.Join(sections, "\n")
}
