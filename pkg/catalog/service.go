// Package catalog maps catalog operations onto dispatcher calls.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-training/miurev/pkg/core"
)

// DefaultSearchLimit is the page size used when a search does not ask for one.
const DefaultSearchLimit = 20

// ErrBusy matches every BusyError.
var ErrBusy = errors.New("server is busy")

// BusyError is returned while the upstream cooldown is active.
type BusyError struct {
	RetryAfter time.Duration
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("server is busy, retry after %s", e.RetryAfter)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

// Executor runs one outbound request. *dispatch.Dispatcher satisfies it.
type Executor interface {
	Execute(ctx context.Context, cfg core.RequestConfig) (*core.Response, error)
}

// Service exposes the catalog endpoints the gateway uses.
type Service struct {
	exec Executor
}

// NewService creates a Service sending its requests through exec.
func NewService(exec Executor) *Service {
	return &Service{exec: exec}
}

type SearchParams struct {
	Q      string
	Type   string
	Limit  int
	Offset int
	Market string
}

// PageParams selects a page of a paged resource.
type PageParams struct {
	Limit  int
	Offset int
	Market string
}

type ArtistAlbumsParams struct {
	IncludeGroups []string
	Limit         int
	Offset        int
	Market        string
}

type CategoryParams struct {
	Country string
	Locale  string
	Limit   int
	Offset  int
}

// Search looks up items of p.Type matching p.Q. Limit defaults to 20 and
// offset to 0.
func (s *Service) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	params := url.Values{
		"q":      {p.Q},
		"type":   {p.Type},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(max(p.Offset, 0))},
	}
	setIf(params, "market", p.Market)

	var out SearchResult
	if err := s.get(ctx, "/search", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Album(ctx context.Context, id, market string) (*Album, error) {
	params := url.Values{}
	setIf(params, "market", market)

	var out Album
	if err := s.get(ctx, "/albums/"+url.PathEscape(id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Albums fetches several albums in one call. Unknown ids come back as nil entries.
func (s *Service) Albums(ctx context.Context, ids []string, market string) ([]*Album, error) {
	params := url.Values{"ids": {strings.Join(ids, ",")}}
	setIf(params, "market", market)

	var out struct {
		Albums []*Album `json:"albums"`
	}
	if err := s.get(ctx, "/albums", params, &out); err != nil {
		return nil, err
	}
	return out.Albums, nil
}

func (s *Service) AlbumTracks(ctx context.Context, id string, p PageParams) (*Paging[Track], error) {
	var out Paging[Track]
	if err := s.get(ctx, "/albums/"+url.PathEscape(id)+"/tracks", pageValues(p.Limit, p.Offset, p.Market), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Artist(ctx context.Context, id string) (*Artist, error) {
	var out Artist
	if err := s.get(ctx, "/artists/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Artists(ctx context.Context, ids []string) ([]*Artist, error) {
	var out struct {
		Artists []*Artist `json:"artists"`
	}
	if err := s.get(ctx, "/artists", url.Values{"ids": {strings.Join(ids, ",")}}, &out); err != nil {
		return nil, err
	}
	return out.Artists, nil
}

func (s *Service) ArtistAlbums(ctx context.Context, id string, p ArtistAlbumsParams) (*Paging[Album], error) {
	params := pageValues(p.Limit, p.Offset, p.Market)
	if len(p.IncludeGroups) > 0 {
		params.Set("include_groups", strings.Join(p.IncludeGroups, ","))
	}

	var out Paging[Album]
	if err := s.get(ctx, "/artists/"+url.PathEscape(id)+"/albums", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Track(ctx context.Context, id, market string) (*Track, error) {
	params := url.Values{}
	setIf(params, "market", market)

	var out Track
	if err := s.get(ctx, "/tracks/"+url.PathEscape(id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Tracks(ctx context.Context, ids []string, market string) ([]*Track, error) {
	params := url.Values{"ids": {strings.Join(ids, ",")}}
	setIf(params, "market", market)

	var out struct {
		Tracks []*Track `json:"tracks"`
	}
	if err := s.get(ctx, "/tracks", params, &out); err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

func (s *Service) Categories(ctx context.Context, p CategoryParams) (*Paging[Category], error) {
	params := pageValues(p.Limit, p.Offset, "")
	setIf(params, "country", p.Country)
	setIf(params, "locale", p.Locale)

	var out struct {
		Categories Paging[Category] `json:"categories"`
	}
	if err := s.get(ctx, "/browse/categories", params, &out); err != nil {
		return nil, err
	}
	return &out.Categories, nil
}

func (s *Service) Category(ctx context.Context, id, country, locale string) (*Category, error) {
	params := url.Values{}
	setIf(params, "country", country)
	setIf(params, "locale", locale)

	var out Category
	if err := s.get(ctx, "/browse/categories/"+url.PathEscape(id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) get(ctx context.Context, path string, params url.Values, v any) error {
	resp, err := s.exec.Execute(ctx, core.RequestConfig{URL: path, Params: params})
	if err != nil {
		return err
	}
	if resp.Busy {
		return &BusyError{RetryAfter: resp.RetryAfter}
	}
	return resp.Decode(v)
}

// SplitIDs splits a comma-separated id list, dropping blanks.
func SplitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func pageValues(limit, offset int, market string) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	setIf(params, "market", market)
	return params
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
