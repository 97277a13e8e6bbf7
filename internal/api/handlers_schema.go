package api

import (
	"net/http"

	"github.com/windtools/fstdeck/internal/deck"
)

// SchemaField is the JSON form of one schema row.
type SchemaField struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Enum       []int    `json:"enum,omitempty"`
	EnumStr    []string `json:"enumStr,omitempty"`
	Domain     string   `json:"domain,omitempty"`
	Quoted     bool     `json:"quoted,omitempty"`
	Sentinel   bool     `json:"sentinel,omitempty"`
	GovernedBy string   `json:"governedBy,omitempty"`
	Desc       string   `json:"desc"`
}

// SchemaSection groups the fields of one file section in canonical order.
type SchemaSection struct {
	Title  string        `json:"title"`
	Fields []SchemaField `json:"fields"`
}

// handleSchema returns the full primary-input schema table.
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	t := deck.Schema()
	sections := make([]SchemaSection, 0, len(t.Sections))
	for _, sec := range t.Sections {
		fields := make([]SchemaField, 0, len(sec.Fields))
		for _, spec := range sec.Fields {
			fields = append(fields, SchemaField{
				Name:       spec.Name,
				Kind:       spec.Kind.String(),
				Enum:       spec.Enum,
				EnumStr:    spec.EnumStr,
				Domain:     domainLabel(spec.Domain),
				Quoted:     spec.Quoted,
				Sentinel:   spec.Sentinel,
				GovernedBy: spec.GovernedBy,
				Desc:       spec.Desc,
			})
		}
		sections = append(sections, SchemaSection{Title: sec.Title, Fields: fields})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": sections})
}

func domainLabel(d deck.Domain) string {
	switch d {
	case deck.DomainPositive:
		return "positive"
	case deck.DomainNonNegative:
		return "nonNegative"
	case deck.DomainAtLeastOne:
		return "atLeastOne"
	default:
		return ""
	}
}
