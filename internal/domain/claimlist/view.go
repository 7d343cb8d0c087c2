package claimlist

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/claimsview/claimsview/internal/domain/claims"
	"github.com/claimsview/claimsview/internal/viewstate"
	"github.com/claimsview/claimsview/pkg/pagination"
)

const pageTitle = "Claims"

type loadingView struct {
	Title string
	// Events is the WebSocket path announcing the end of the load.
	Events string
}

type column struct {
	Label string
	// Href is empty for columns that cannot be sorted.
	Href  string
	Arrow string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type hiddenField struct {
	Name  string
	Value string
}

// pageView is everything claims.html needs. Link fields are empty when the
// control is disabled.
type pageView struct {
	Title  string
	State  viewstate.ViewState
	Result claims.Result

	Columns   []column
	Statuses  []option
	PageSizes []option
	Hidden    []hiddenField

	First, Previous, Next, Last string

	ResetHref   string
	ResetActive bool
	ShareURL    string

	DebounceMS     int64
	CopyFeedbackMS int64
}

var columns = []struct {
	label string
	field claims.SortField
}{
	{"Patient", claims.SortPatientName},
	{"Service Date", claims.SortServiceDate},
	{"Insurance Carrier", claims.SortNone},
	{"Amount", claims.SortNone},
	{"Status", claims.SortStatus},
	{"Last Updated", claims.SortLastUpdated},
	{"User", claims.SortNone},
	{"Date Sent", claims.SortNone},
	{"Date Sent Orig", claims.SortNone},
	{"PMS Sync Status", claims.SortNone},
	{"Provider", claims.SortNone},
}

// formParams are submitted by the filter form itself; every other query
// parameter rides along as a hidden input.
var formParams = map[string]bool{
	viewstate.ParamSearch:   true,
	viewstate.ParamStatus:   true,
	viewstate.ParamPageSize: true,
	viewstate.ParamPage:     true,
}

func newPageView(loc *url.URL, s viewstate.ViewState, res claims.Result, share string, settings Settings) pageView {
	v := pageView{
		Title:          pageTitle,
		State:          s,
		Result:         res,
		ResetHref:      viewstate.Clear(loc).String(),
		ResetActive:    s.HasActiveFilters(),
		ShareURL:       share,
		DebounceMS:     settings.SearchDebounce.Milliseconds(),
		CopyFeedbackMS: settings.CopyFeedback.Milliseconds(),
	}

	for _, col := range columns {
		c := column{Label: col.label}
		if col.field != claims.SortNone {
			_, patch := s.ToggleSort(col.field)
			c.Href = viewstate.Href(loc, patch)
			if s.SortField == col.field {
				c.Arrow = "↑"
				if s.SortDir == claims.SortDesc {
					c.Arrow = "↓"
				}
			}
		}
		v.Columns = append(v.Columns, c)
	}

	v.Statuses = append(v.Statuses, option{Value: "", Label: "All Statuses", Selected: s.Status == ""})
	for _, st := range claims.Statuses {
		v.Statuses = append(v.Statuses, option{Value: string(st), Label: string(st), Selected: s.Status == st})
	}
	for _, n := range pagination.PageSizes {
		size := strconv.Itoa(n)
		v.PageSizes = append(v.PageSizes, option{Value: size, Label: size, Selected: s.PageSize == n})
	}

	q := loc.Query()
	for name, values := range q {
		if formParams[name] {
			continue
		}
		for _, val := range values {
			v.Hidden = append(v.Hidden, hiddenField{Name: name, Value: val})
		}
	}
	slices.SortStableFunc(v.Hidden, func(a, b hiddenField) int { return strings.Compare(a.Name, b.Name) })

	pageHref := func(page int) string {
		_, patch := s.WithPage(page)
		return viewstate.Href(loc, patch)
	}
	w := res.Window()
	if w.HasPrevious() {
		v.First = pageHref(1)
		v.Previous = pageHref(w.Page - 1)
	}
	if w.HasNext() {
		v.Next = pageHref(w.Page + 1)
		v.Last = pageHref(w.TotalPages)
	}
	return v
}
