package claims

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claimsview/claimsview/pkg/pagination"
)

// SortField names a sortable column. The zero value means unsorted.
type SortField string

const (
	SortNone        SortField = ""
	SortPatientName SortField = "patientLastName"
	SortStatus      SortField = "status"
	SortServiceDate SortField = "serviceDate"
	SortLastUpdated SortField = "lastUpdated"
)

// SortFields lists every sortable column.
var SortFields = []SortField{SortPatientName, SortStatus, SortServiceDate, SortLastUpdated}

func ParseSortField(s string) (SortField, bool) {
	for _, f := range SortFields {
		if string(f) == s {
			return f, true
		}
	}
	return SortNone, false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Query is the filter/sort/page descriptor the pipeline evaluates.
// An empty Status means no status filter.
type Query struct {
	Search    string
	Status    Status
	SortField SortField
	SortDir   SortDirection
	Page      int
	PageSize  int
}

// Result is what the presentation layer renders.
type Result struct {
	Rows       []Claim `json:"rows"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	// Empty is set when the store holds no records at all, as opposed to
	// a filter that matched nothing.
	Empty bool `json:"empty"`

	window pagination.Window
}

// Window exposes the page window the rows were cut from.
func (r Result) Window() pagination.Window {
	return r.window
}

// Run evaluates filter, sort and paginate over records. records is not
// modified.
func Run(records []Claim, q Query) Result {
	matched := Filter(records, q.Search, q.Status)
	Sort(matched, q.SortField, q.SortDir)

	w := pagination.Compute(len(matched), q.Page, q.PageSize)
	return Result{
		Rows:       pagination.Slice(matched, w),
		Total:      w.Total,
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalPages: w.TotalPages,
		Empty:      len(records) == 0,
		window:     w,
	}
}

// Filter returns the records whose "first last" name contains search
// (case-insensitive) and whose status equals status when one is given.
// The result is a new slice in input order.
func Filter(records []Claim, search string, status Status) []Claim {
	// A Caser carries state and must not be shared across goroutines.
	lower := cases.Lower(language.Und)
	needle := lower.String(search)
	out := make([]Claim, 0, len(records))
	for i := range records {
		c := &records[i]
		if status != "" && c.Status != status {
			continue
		}
		if needle != "" && !strings.Contains(lower.String(c.PatientName()), needle) {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// Sort orders records in place by field. Equal keys keep their relative
// order in both directions. SortNone leaves records untouched.
func Sort(records []Claim, field SortField, dir SortDirection) {
	cmp := comparator(field)
	if cmp == nil {
		return
	}
	if dir == SortDesc {
		asc := cmp
		cmp = func(a, b *Claim) int { return -asc(a, b) }
	}
	slices.SortStableFunc(records, func(a, b Claim) int { return cmp(&a, &b) })
}

func comparator(field SortField) func(a, b *Claim) int {
	switch field {
	case SortPatientName:
		return func(a, b *Claim) int {
			return strings.Compare(sortName(a), sortName(b))
		}
	case SortStatus:
		return func(a, b *Claim) int {
			return strings.Compare(string(a.Status), string(b.Status))
		}
	case SortServiceDate:
		return func(a, b *Claim) int { return a.ServiceDate.Compare(b.ServiceDate) }
	case SortLastUpdated:
		return func(a, b *Claim) int { return a.LastUpdated.Compare(b.LastUpdated) }
	}
	return nil
}

func sortName(c *Claim) string {
	return strings.ToLower(c.PatientLastName + " " + c.PatientFirstName)
}
