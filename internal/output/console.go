// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// tableSummaryWidth bounds the summary column in table output.
const tableSummaryWidth = 60

// ParseFormat validates a console format name. Empty selects text.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch f := types.OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return types.FormatText, nil
	case types.FormatText, types.FormatTable, types.FormatJSON, types.FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be text, table, json, or yaml", s)
	}
}

// Printer writes results to the console in one of the supported formats.
type Printer struct {
	Out       io.Writer
	Format    types.OutputFormat
	UseColors bool
}

// Print renders papers in the printer's format.
func (p *Printer) Print(papers []types.PaperResult) error {
	switch p.Format {
	case types.FormatText, "":
		p.printText(papers)
		return nil
	case types.FormatTable:
		return p.printTable(papers)
	case types.FormatJSON:
		return p.printJSON(papers)
	case types.FormatYAML:
		return p.printYAML(papers)
	default:
		return fmt.Errorf("unsupported format %q", p.Format)
	}
}

func (p *Printer) printText(papers []types.PaperResult) {
	if len(papers) == 0 {
		fmt.Fprintln(p.Out, "No papers found.")
		return
	}

	label := fmt.Sprint
	if p.UseColors {
		label = color.New(color.FgCyan, color.Bold).Sprint
	}

	for i, paper := range papers {
		if i > 0 {
			fmt.Fprintln(p.Out)
		}
		for j, v := range paper.Row() {
			fmt.Fprintf(p.Out, "%s: %s\n", label(Headers[j]), v)
		}
	}
}

func (p *Printer) printTable(papers []types.PaperResult) error {
	table := tablewriter.NewTable(p.Out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)

	rows := make([][]string, 0, len(papers))
	for _, paper := range papers {
		row := paper.Row()
		row[len(row)-1] = truncate(row[len(row)-1], tableSummaryWidth)
		rows = append(rows, row)
	}

	table.Header(Headers)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("building table: %w", err)
	}
	return table.Render()
}

// record keys each value by its CSV header so JSON and YAML output use the
// same column names, in column order.
type record struct {
	PubmedID           string `json:"PubmedID" yaml:"PubmedID"`
	Title              string `json:"Title" yaml:"Title"`
	PublicationDate    string `json:"Publication Date" yaml:"Publication Date"`
	NonAcademicAuthors string `json:"Non-academic Author(s)" yaml:"Non-academic Author(s)"`
	Companies          string `json:"Company Affiliation(s)" yaml:"Company Affiliation(s)"`
	Email              string `json:"Corresponding Author Email" yaml:"Corresponding Author Email"`
	Summary            string `json:"LLM Summary" yaml:"LLM Summary"`
}

func records(papers []types.PaperResult) []record {
	out := make([]record, len(papers))
	for i, paper := range papers {
		row := paper.Row()
		out[i] = record{
			PubmedID:           row[0],
			Title:              row[1],
			PublicationDate:    row[2],
			NonAcademicAuthors: row[3],
			Companies:          row[4],
			Email:              row[5],
			Summary:            row[6],
		}
	}
	return out
}

func (p *Printer) printJSON(papers []types.PaperResult) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(records(papers))
}

func (p *Printer) printYAML(papers []types.PaperResult) error {
	enc := yaml.NewEncoder(p.Out)
	enc.SetIndent(2)
	if err := enc.Encode(records(papers)); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
