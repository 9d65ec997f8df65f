// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

package tmdb

// posterBaseURL is the TMDB image CDN prefix for w500 posters.
const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Movie is a movie record from TMDB. GenreIDs is populated on list
// responses (popular, discover); detail responses carry a full Genres array
// instead.
type Movie struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview"`
	PosterPath  string       `json:"poster_path"`
	ReleaseDate string       `json:"release_date"`
	VoteAverage float64      `json:"vote_average"`
	GenreIDs    []int        `json:"genre_ids,omitempty"`
	Genres      []MovieGenre `json:"genres,omitempty"`
}

// MovieGenre is the embedded genre object on detail responses.
type MovieGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PosterURL returns the full poster image URL, or "" when the movie has no
// poster.
func (m *Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return posterBaseURL + m.PosterPath
}

// HasGenre reports whether the movie carries the given genre id, checking
// both the list-response and detail-response representations.
func (m *Movie) HasGenre(id int) bool {
	for _, g := range m.GenreIDs {
		if g == id {
			return true
		}
	}
	for _, g := range m.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

// movieList is the paged envelope TMDB wraps list results in.
type movieList struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
