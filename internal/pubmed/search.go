// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type esearchResponse struct {
	Result struct {
		Count            string   `json:"count"`
		IDList           []string `json:"idlist"`
		QueryTranslation string   `json:"querytranslation"`
		Error            string   `json:"ERROR"`
	} `json:"esearchresult"`
}

// Search runs esearch for term against the pubmed database and returns the
// matching PMIDs in the order PubMed ranks them, at most MaxResults of them.
func (c *Client) Search(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("empty PubMed search term")
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {strconv.Itoa(c.cfg.MaxResults)},
		"retmode": {"json"},
	}

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var er esearchResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if er.Result.Error != "" {
		return nil, fmt.Errorf("esearch: %s", er.Result.Error)
	}

	c.logger.Debug("esearch complete",
		"count", er.Result.Count, "returned", len(er.Result.IDList), "translation", er.Result.QueryTranslation)

	ids := er.Result.IDList
	if len(ids) > c.cfg.MaxResults {
		ids = ids[:c.cfg.MaxResults]
	}
	return ids, nil
}
