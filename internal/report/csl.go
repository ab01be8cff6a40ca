package report

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/cremarco/sti-survey-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the records as a CSL-YAML bibliography to w.
func FormatCSL(records []types.Record, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a survey record to a CSLItem.
func toCSLItem(r types.Record) CSLItem {
	item := CSLItem{
		ID:    r.ID(),
		Type:  cslType(r),
		Title: r.TitleText(),
	}

	for _, a := range r.Authors() {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if v, ok := r["venue"].(map[string]any); ok {
		if name, ok := v["name"].(string); ok {
			item.ContainerTitle = strings.TrimSpace(name)
		}
	}

	if y, ok := r.Year(); ok {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}

	doi := strings.TrimSpace(r.DOI())
	switch {
	case strings.HasPrefix(doi, "https://doi.org/"):
		item.DOI = strings.TrimPrefix(doi, "https://doi.org/")
		item.URL = doi
	case strings.HasPrefix(doi, "10."):
		item.DOI = doi
	}

	return item
}

// cslType maps the venue type onto the CSL item types Pandoc understands.
func cslType(r types.Record) string {
	v, ok := r["venue"].(map[string]any)
	if !ok {
		return "article"
	}
	t, _ := v["type"].(string)
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "conference", "workshop":
		return "paper-conference"
	case "journal":
		return "article-journal"
	}
	return "article"
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
