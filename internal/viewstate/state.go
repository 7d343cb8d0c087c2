// Package viewstate holds the user-controlled list parameters (search,
// status filter, sort, pagination) and keeps them in sync with URL query
// parameters so a view can be bookmarked or shared.
package viewstate

import (
	"net/url"
	"strconv"

	"github.com/claimsview/claimsview/internal/domain/claims"
	"github.com/claimsview/claimsview/pkg/pagination"
)

// Query parameter names.
const (
	ParamSearch    = "search"
	ParamStatus    = "status"
	ParamSortField = "sortField"
	ParamSortDir   = "sortDir"
	ParamPage      = "page"
	ParamPageSize  = "pageSize"
)

// ViewState describes which subset of the claims is visible and in what
// order. SearchInput is what the user typed; Search is the value last
// committed after the debounce delay and is what the pipeline filters on.
type ViewState struct {
	SearchInput string
	Search      string
	Status      claims.Status
	SortField   claims.SortField
	SortDir     claims.SortDirection
	Page        int
	PageSize    int
}

// Defaults returns the state used when the URL carries no parameters.
func Defaults() ViewState {
	return ViewState{
		SortDir:  claims.SortAsc,
		Page:     1,
		PageSize: pagination.DefaultPageSize,
	}
}

// Parse reads a ViewState from query parameters. Values that are absent or
// malformed fall back to their defaults without error.
func Parse(q url.Values) ViewState {
	s := Defaults()

	s.Search = q.Get(ParamSearch)
	s.SearchInput = s.Search

	if st, ok := claims.ParseStatus(q.Get(ParamStatus)); ok {
		s.Status = st
	}
	if f, ok := claims.ParseSortField(q.Get(ParamSortField)); ok {
		s.SortField = f
	}
	if q.Get(ParamSortDir) == string(claims.SortDesc) {
		s.SortDir = claims.SortDesc
	}
	if p, err := strconv.Atoi(q.Get(ParamPage)); err == nil && p >= 1 {
		s.Page = p
	}
	if n, err := strconv.Atoi(q.Get(ParamPageSize)); err == nil && pagination.ValidPageSize(n) {
		s.PageSize = n
	}
	return s
}

// Encode returns the query parameters for s, omitting every value that
// equals its default.
func (s ViewState) Encode() url.Values {
	q := url.Values{}
	for k, v := range s.patch() {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// patch lists every parameter with its encoded value, empty for defaults.
func (s ViewState) patch() Patch {
	return Patch{
		ParamSearch:    s.Search,
		ParamStatus:    string(s.Status),
		ParamSortField: string(s.SortField),
		ParamSortDir:   encodeDir(s.SortDir),
		ParamPage:      encodePage(s.Page),
		ParamPageSize:  encodePageSize(s.PageSize),
	}
}

// Canonical returns u with every view parameter rewritten to its encoded
// form: defaults and malformed values are dropped, other parameters kept.
func (s ViewState) Canonical(u *url.URL) *url.URL {
	return Apply(u, s.patch())
}

// Query converts s into the pipeline descriptor.
func (s ViewState) Query() claims.Query {
	return claims.Query{
		Search:    s.Search,
		Status:    s.Status,
		SortField: s.SortField,
		SortDir:   s.SortDir,
		Page:      s.Page,
		PageSize:  s.PageSize,
	}
}

// HasActiveFilters reports whether a search or status filter narrows the
// result. Sorting and paging do not count.
func (s ViewState) HasActiveFilters() bool {
	return s.Search != "" || s.Status != ""
}

// CommitSearch promotes SearchInput to Search and returns to the first page.
// The patch is empty when there is nothing new to commit.
func (s ViewState) CommitSearch() (ViewState, Patch) {
	if s.SearchInput == s.Search {
		return s, nil
	}
	s.Search = s.SearchInput
	s.Page = 1
	return s, Patch{ParamSearch: s.Search, ParamPage: ""}
}

// WithStatus sets the status filter ("" clears it) and returns to the first
// page.
func (s ViewState) WithStatus(st claims.Status) (ViewState, Patch) {
	s.Status = st
	s.Page = 1
	return s, Patch{ParamStatus: string(st), ParamPage: ""}
}

// ToggleSort sorts by field. Selecting the current field flips the
// direction, any other field starts ascending. The page is kept.
func (s ViewState) ToggleSort(field claims.SortField) (ViewState, Patch) {
	dir := claims.SortAsc
	if s.SortField == field && s.SortDir == claims.SortAsc {
		dir = claims.SortDesc
	}
	s.SortField = field
	s.SortDir = dir
	return s, Patch{ParamSortField: string(field), ParamSortDir: encodeDir(dir)}
}

// WithPage moves to page. Pages below 1 become 1; the upper bound is the
// caller's to enforce since it depends on the result size.
func (s ViewState) WithPage(page int) (ViewState, Patch) {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s, Patch{ParamPage: encodePage(page)}
}

// WithPageSize changes the page size and returns to the first page. Sizes
// outside pagination.PageSizes are rejected.
func (s ViewState) WithPageSize(size int) (ViewState, Patch, error) {
	if !pagination.ValidPageSize(size) {
		return s, nil, ErrInvalidPageSize
	}
	s.PageSize = size
	s.Page = 1
	return s, Patch{ParamPageSize: encodePageSize(size), ParamPage: ""}, nil
}

func encodeDir(d claims.SortDirection) string {
	if d == claims.SortDesc {
		return string(claims.SortDesc)
	}
	return ""
}

func encodePage(p int) string {
	if p <= 1 {
		return ""
	}
	return strconv.Itoa(p)
}

func encodePageSize(n int) string {
	if n == pagination.DefaultPageSize || n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
