package catalog

// Image is a cover or icon in several sizes. Dimensions may be unknown.
type Image struct {
	URL    string `json:"url"`
	Height *int   `json:"height"`
	Width  *int   `json:"width"`
}

// ExternalURLs holds links to the catalog's own web player.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

type Followers struct {
	Href  *string `json:"href"`
	Total int     `json:"total"`
}

// Artist covers both the simplified and the full artist object.
type Artist struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    *Followers   `json:"followers,omitempty"`
	Genres       []string     `json:"genres,omitempty"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Images       []Image      `json:"images,omitempty"`
	Name         string       `json:"name"`
	Popularity   int          `json:"popularity,omitempty"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Track covers both the simplified and the full track object.
type Track struct {
	Album            *Album       `json:"album,omitempty"`
	Artists          []Artist     `json:"artists"`
	AvailableMarkets []string     `json:"available_markets,omitempty"`
	DiscNumber       int          `json:"disc_number"`
	DurationMS       int          `json:"duration_ms"`
	Explicit         bool         `json:"explicit"`
	ExternalURLs     ExternalURLs `json:"external_urls"`
	Href             string       `json:"href"`
	ID               string       `json:"id"`
	IsLocal          bool         `json:"is_local"`
	IsPlayable       *bool        `json:"is_playable,omitempty"`
	Name             string       `json:"name"`
	Popularity       int          `json:"popularity,omitempty"`
	PreviewURL       *string      `json:"preview_url"`
	TrackNumber      int          `json:"track_number"`
	Type             string       `json:"type"`
	URI              string       `json:"uri"`
}

// Album covers both the simplified and the full album object. Tracks is only
// present on the full object.
type Album struct {
	AlbumType            string         `json:"album_type"`
	Artists              []Artist       `json:"artists"`
	AvailableMarkets     []string       `json:"available_markets,omitempty"`
	ExternalURLs         ExternalURLs   `json:"external_urls"`
	Genres               []string       `json:"genres,omitempty"`
	Href                 string         `json:"href"`
	ID                   string         `json:"id"`
	Images               []Image        `json:"images"`
	Label                string         `json:"label,omitempty"`
	Name                 string         `json:"name"`
	Popularity           int            `json:"popularity,omitempty"`
	ReleaseDate          string         `json:"release_date"`
	ReleaseDatePrecision string         `json:"release_date_precision"`
	TotalTracks          int            `json:"total_tracks"`
	Tracks               *Paging[Track] `json:"tracks,omitempty"`
	Type                 string         `json:"type"`
	URI                  string         `json:"uri"`
}

type Category struct {
	Href  string  `json:"href"`
	Icons []Image `json:"icons"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
}

// Paging is the catalog's offset-based page envelope.
type Paging[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
	Total    int     `json:"total"`
}

// SearchResult holds one page per requested item type.
type SearchResult struct {
	Albums  *Paging[Album]  `json:"albums,omitempty"`
	Artists *Paging[Artist] `json:"artists,omitempty"`
	Tracks  *Paging[Track]  `json:"tracks,omitempty"`
}
