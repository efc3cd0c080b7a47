// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// esummaryResponse keeps "result" raw: it mixes a "uids" array with one
// object per PMID.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	UID     string           `json:"uid"`
	Title   string           `json:"title"`
	PubDate string           `json:"pubdate"`
	Authors []esummaryAuthor `json:"authors"`
	Error   string           `json:"error"`
}

type esummaryAuthor struct {
	Name     string `json:"name"`
	AuthType string `json:"authtype"`
}

// Summary fetches the esummary document for pmid. Authors carry names only;
// esummary does not report affiliations.
func (c *Client) Summary(ctx context.Context, pmid string) (types.Document, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"json"},
	}

	body, err := c.get(ctx, "esummary.fcgi", params)
	if err != nil {
		return types.Document{}, err
	}

	var sr esummaryResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return types.Document{}, fmt.Errorf("parsing esummary response for %s: %w", pmid, err)
	}

	raw, ok := sr.Result[pmid]
	if !ok {
		return types.Document{}, fmt.Errorf("esummary response has no document for %s", pmid)
	}

	var ed esummaryDoc
	if err := json.Unmarshal(raw, &ed); err != nil {
		return types.Document{}, fmt.Errorf("parsing esummary document %s: %w", pmid, err)
	}
	if ed.Error != "" {
		return types.Document{}, fmt.Errorf("esummary %s: %s", pmid, ed.Error)
	}

	doc := types.Document{
		PMID:    ed.UID,
		Title:   cleanText(ed.Title),
		PubDate: ed.PubDate,
	}
	for _, a := range ed.Authors {
		if a.AuthType != "" && a.AuthType != "Author" {
			continue
		}
		doc.Authors = append(doc.Authors, types.Author{Name: a.Name})
	}
	return doc, nil
}
