package model

import "time"

// Movie is a catalog entry for a film that can be scheduled.  Metadata
// fields mirror what the TMDB import collaborator delivers; only the id
// and title are required for a showing to reference a movie.
//
// Fields:
//  ID          – primary key identifier.
//  TMDBID      – external TMDB identifier (nil for manually created movies).
//  Title       – movie title.
//  Overview    – plot summary (nil when absent).
//  PosterPath  – relative poster image path (nil when absent).
//  ReleaseDate – release date (nil when unknown).
//  Runtime     – runtime in minutes (nil when unknown).
//  Genres      – comma separated genre names.
//  VoteAverage – TMDB rating 0–10.
//  Status      – catalog status (e.g. "Released", "Coming Soon").
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
	ID          uint64     `json:"id"`
	TMDBID      *int64     `json:"tmdb_id,omitempty"`
	Title       string     `json:"title"`
	Overview    *string    `json:"overview,omitempty"`
	PosterPath  *string    `json:"poster_path,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Runtime     *uint32    `json:"runtime_minutes,omitempty"`
	Genres      string     `json:"genres"`
	VoteAverage float64    `json:"vote_average"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
