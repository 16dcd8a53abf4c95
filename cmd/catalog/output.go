package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/favorites"
)

// Output formats accepted by --output.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

func validateOutputFormat(format string) error {
	switch format {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format %q, valid formats: %s, %s, %s",
			format, OutputFormatTable, OutputFormatJSON, OutputFormatYAML)
	}
}

// render writes v as JSON or YAML, or hands off to table for the table format.
func render(w io.Writer, format string, v interface{}, table func(io.Writer) error) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode as JSON: %w", err)
		}
		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode as YAML: %w", err)
		}
		return encoder.Close()
	default:
		return table(w)
	}
}

func renderPageTable(w io.Writer, page catalog.ResultPage, favs *favorites.Store) error {
	if len(page.Items) == 0 {
		_, _ = io.WriteString(w, "No entities found\n")
		return nil
	}

	renderSummaries(w, page.Items, favs)

	more := ""
	if page.HasMore {
		more = ", more available"
	}
	_, _ = fmt.Fprintf(w, "Showing %d of %d%s\n", len(page.Items), page.Total, more)
	return nil
}

func renderSummaries(w io.Writer, items []catalog.EntitySummary, favs *favorites.Store) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Favorite")

	for _, item := range items {
		_ = table.Append([]string{
			strconv.Itoa(item.ID),
			item.Name,
			favoriteMark(favs, item.ID),
		})
	}

	_ = table.Render()
}

func renderDetailTable(w io.Writer, detail *catalog.EntityDetail, favs *favorites.Store) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("ID", strconv.Itoa(detail.ID))
	_ = table.Append("Name", detail.Name)
	_ = table.Append("Types", strings.Join(detail.Types, ", "))
	_ = table.Append("Height", strconv.Itoa(detail.Height))
	_ = table.Append("Weight", strconv.Itoa(detail.Weight))
	_ = table.Append("Base Experience", strconv.Itoa(detail.BaseExperience))

	if len(detail.Abilities) > 0 {
		names := make([]string, 0, len(detail.Abilities))
		for _, a := range detail.Abilities {
			name := a.Name
			if a.IsHidden {
				name += " (hidden)"
			}
			names = append(names, name)
		}
		_ = table.Append("Abilities", strings.Join(names, ", "))
	}
	for _, s := range detail.Stats {
		_ = table.Append("Stat "+s.Name, strconv.Itoa(s.Base))
	}
	if detail.Sprites.OfficialArtwork != "" {
		_ = table.Append("Artwork", detail.Sprites.OfficialArtwork)
	}
	_ = table.Append("Favorite", favoriteMark(favs, detail.ID))

	_ = table.Render()
	return nil
}

func favoriteMark(favs *favorites.Store, id int) string {
	if favs != nil && favs.IsFavorite(id) {
		return "yes"
	}
	return ""
}
