package catalog

import (
	"net/url"
	"strings"
)

// FormattedArtist is the artist shape served to gateway clients.
type FormattedArtist struct {
	ExternalURLs string   `json:"external_urls"`
	Genres       []string `json:"genres,omitempty"`
	ID           string   `json:"id"`
	Images       []Image  `json:"images,omitempty"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	URI          string   `json:"uri"`
}

// FormattedTrack is the track shape embedded in a formatted album.
type FormattedTrack struct {
	DiscNumber   int          `json:"disc_number"`
	DurationMS   int          `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	ID           string       `json:"id"`
	IsPlayable   *bool        `json:"is_playable,omitempty"`
	Name         string       `json:"name"`
	PreviewURL   *string      `json:"preview_url"`
	TrackNumber  int          `json:"track_number"`
}

// FormattedAlbum is the album shape served to gateway clients. The
// release_date_precission key is kept as existing clients read it.
type FormattedAlbum struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	ReleaseDate          string                  `json:"release_date"`
	ReleaseDatePrecision string                  `json:"release_date_precission"`
	Images               []Image                 `json:"images"`
	TotalTracks          int                     `json:"total_tracks"`
	ExternalURLs         string                  `json:"external_urls"`
	Artists              []FormattedArtist       `json:"artists"`
	AlbumType            string                  `json:"album_type"`
	Type                 string                  `json:"type"`
	URI                  string                  `json:"uri"`
	Tracks               *Paging[FormattedTrack] `json:"tracks,omitempty"`
}

// FormatAlbum flattens an album for clients: external URLs become plain
// strings and tracks keep only their playback fields.
func FormatAlbum(a *Album) *FormattedAlbum {
	if a == nil {
		return nil
	}
	out := &FormattedAlbum{
		ID:                   a.ID,
		Name:                 a.Name,
		ReleaseDate:          a.ReleaseDate,
		ReleaseDatePrecision: a.ReleaseDatePrecision,
		Images:               a.Images,
		TotalTracks:          a.TotalTracks,
		ExternalURLs:         a.ExternalURLs.Spotify,
		Artists:              make([]FormattedArtist, 0, len(a.Artists)),
		AlbumType:            a.AlbumType,
		Type:                 a.Type,
		URI:                  a.URI,
	}
	for _, artist := range a.Artists {
		out.Artists = append(out.Artists, FormattedArtist{
			ExternalURLs: artist.ExternalURLs.Spotify,
			Genres:       artist.Genres,
			ID:           artist.ID,
			Images:       artist.Images,
			Name:         artist.Name,
			Type:         artist.Type,
			URI:          artist.URI,
		})
	}
	if a.Tracks != nil {
		out.Tracks = MapPaging(a.Tracks, func(t Track) FormattedTrack {
			return FormattedTrack{
				DiscNumber:   t.DiscNumber,
				DurationMS:   t.DurationMS,
				Explicit:     t.Explicit,
				ExternalURLs: t.ExternalURLs,
				ID:           t.ID,
				IsPlayable:   t.IsPlayable,
				Name:         t.Name,
				PreviewURL:   t.PreviewURL,
				TrackNumber:  t.TrackNumber,
			}
		})
	}
	return out
}

// MapPaging converts every item of p with fn, keeping the envelope.
func MapPaging[T, U any](p *Paging[T], fn func(T) U) *Paging[U] {
	if p == nil {
		return nil
	}
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return &Paging[U]{
		Href:     p.Href,
		Items:    items,
		Limit:    p.Limit,
		Next:     p.Next,
		Offset:   p.Offset,
		Previous: p.Previous,
		Total:    p.Total,
	}
}

// FormatPaging points the next and previous links of p at the gateway itself:
// appURL's origin plus path, with query extended by the limit and offset of
// the upstream link.
func FormatPaging[T any](p *Paging[T], appURL *url.URL, path string, query url.Values) *Paging[T] {
	if p == nil {
		return nil
	}
	p.Next = gatewayLink(p.Next, appURL, path, query)
	p.Previous = gatewayLink(p.Previous, appURL, path, query)
	return p
}

func gatewayLink(upstream *string, appURL *url.URL, path string, query url.Values) *string {
	if upstream == nil || *upstream == "" {
		return upstream
	}

	limit, offset := "0", "0"
	if u, err := url.Parse(*upstream); err == nil {
		q := u.Query()
		if v := q.Get("limit"); v != "" {
			limit = v
		}
		if v := q.Get("offset"); v != "" {
			offset = v
		}
	}

	params := url.Values{}
	for k, vs := range query {
		params[k] = append([]string(nil), vs...)
	}
	params.Set("limit", limit)
	params.Set("offset", offset)

	link := Link(appURL, path, params)
	return &link
}

// Link builds an absolute URL on the gateway's public origin.
func Link(appURL *url.URL, path string, params url.Values) string {
	origin := ""
	if appURL != nil {
		origin = appURL.Scheme + "://" + appURL.Host
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(params) == 0 {
		return origin + path
	}
	return origin + path + "?" + params.Encode()
}
