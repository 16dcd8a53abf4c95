// Package catalog defines the entity and query types shared by the catalog
// client, the detail cache and the query resolver.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedURL is returned when an entity URL carries no numeric id segment.
var ErrMalformedURL = errors.New("entity url has no numeric id segment")

// EntitySummary is the minimal identity of a catalog entity used for listing.
type EntitySummary struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Ability is a named ability of an entity.
type Ability struct {
	Name     string `json:"name" yaml:"name"`
	IsHidden bool   `json:"is_hidden" yaml:"is_hidden"`
}

// Stat is a named base stat of an entity.
type Stat struct {
	Name string `json:"name" yaml:"name"`
	Base int    `json:"base" yaml:"base"`
}

// Sprites holds image references for an entity.
type Sprites struct {
	FrontDefault    string `json:"front_default,omitempty" yaml:"front_default,omitempty"`
	OfficialArtwork string `json:"official_artwork,omitempty" yaml:"official_artwork,omitempty"`
}

// EntityDetail is the full record returned by the detail endpoint.
// Only Types is interpreted by the resolver; the rest is display data.
type EntityDetail struct {
	ID             int       `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Height         int       `json:"height" yaml:"height"`
	Weight         int       `json:"weight" yaml:"weight"`
	BaseExperience int       `json:"base_experience" yaml:"base_experience"`
	Types          []string  `json:"types" yaml:"types"`
	Abilities      []Ability `json:"abilities,omitempty" yaml:"abilities,omitempty"`
	Stats          []Stat    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Sprites        Sprites   `json:"sprites" yaml:"sprites"`
}

// HasType reports whether the entity carries the given type (case-insensitive).
func (d *EntityDetail) HasType(typeName string) bool {
	for _, t := range d.Types {
		if strings.EqualFold(t, typeName) {
			return true
		}
	}
	return false
}

// Summary projects the detail onto an EntitySummary with the given URL.
func (d *EntityDetail) Summary(url string) EntitySummary {
	return EntitySummary{ID: d.ID, Name: d.Name, URL: url}
}

// ListPage is one normalized response of the upstream list endpoint.
type ListPage struct {
	Results []EntitySummary
	Count   int
	HasNext bool
}

// ResultPage is the filtered, sorted and paginated view produced by the resolver.
type ResultPage struct {
	Items   []EntitySummary `json:"items" yaml:"items"`
	Total   int             `json:"total" yaml:"total"`
	HasMore bool            `json:"has_more" yaml:"has_more"`
}

// IDFromURL parses the trailing numeric path segment of an entity URL.
//
// Example:
//
//	IDFromURL("https://pokeapi.co/api/v2/pokemon/25/") // 25
func IDFromURL(url string) (int, error) {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	segment := trimmed[idx+1:]

	id, err := strconv.Atoi(segment)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedURL, url)
	}
	return id, nil
}

// SortByName sorts items in place by case-insensitive name, ties broken by id.
func SortByName(items []EntitySummary) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}
