package client

import (
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

// Upstream wire formats. These mirror the catalog service JSON and are
// converted into pkg/catalog types before leaving the package.

type namedResource struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type listResponse struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []namedResource `json:"results"`
}

type detailResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	BaseExperience int    `json:"base_experience"`
	Types          []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability  namedResource `json:"ability"`
		IsHidden bool          `json:"is_hidden"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        map[string]struct {
			FrontDefault string `json:"front_default"`
		} `json:"other"`
	} `json:"sprites"`
}

func (r *listResponse) toListPage() (*catalog.ListPage, error) {
	page := &catalog.ListPage{
		Results: make([]catalog.EntitySummary, 0, len(r.Results)),
		Count:   r.Count,
		HasNext: r.Next != nil && *r.Next != "",
	}

	for _, res := range r.Results {
		id := res.ID
		if id == 0 {
			parsed, err := catalog.IDFromURL(res.URL)
			if err != nil {
				return nil, err
			}
			id = parsed
		}
		page.Results = append(page.Results, catalog.EntitySummary{
			ID:   id,
			Name: res.Name,
			URL:  res.URL,
		})
	}

	return page, nil
}

func (r *detailResponse) toDetail() *catalog.EntityDetail {
	detail := &catalog.EntityDetail{
		ID:             r.ID,
		Name:           r.Name,
		Height:         r.Height,
		Weight:         r.Weight,
		BaseExperience: r.BaseExperience,
		Types:          make([]string, 0, len(r.Types)),
		Sprites: catalog.Sprites{
			FrontDefault: r.Sprites.FrontDefault,
		},
	}

	for _, t := range r.Types {
		detail.Types = append(detail.Types, t.Type.Name)
	}
	for _, a := range r.Abilities {
		detail.Abilities = append(detail.Abilities, catalog.Ability{Name: a.Ability.Name, IsHidden: a.IsHidden})
	}
	for _, s := range r.Stats {
		detail.Stats = append(detail.Stats, catalog.Stat{Name: s.Stat.Name, Base: s.BaseStat})
	}
	if artwork, ok := r.Sprites.Other["official-artwork"]; ok {
		detail.Sprites.OfficialArtwork = artwork.FrontDefault
	}

	return detail
}

type typeListResponse struct {
	Count   int             `json:"count"`
	Results []namedResource `json:"results"`
}
