package pagination

const DefaultPageSize = 20

// PageSizes are the page sizes a client may choose from.
var PageSizes = []int{10, 20, 25, 50}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Window describes one page over an ordered result of Total items.
// Start and End are slice bounds already clipped to Total.
type Window struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Start      int
	End        int
}

// Compute derives the page window. TotalPages is ceil(total/pageSize) and
// zero for an empty result. A page past the end yields an empty window.
func Compute(total, page, pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	w := Window{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	// Pages past the end start at total without multiplying, so an
	// arbitrarily large page cannot overflow.
	w.Start = total
	if page-1 <= total/pageSize {
		w.Start = min((page-1)*pageSize, total)
	}
	w.End = min(w.Start+pageSize, total)
	return w
}

// HasNext returns true if there are pages after the current one.
func (w Window) HasNext() bool {
	return w.Page < w.TotalPages
}

// HasPrevious returns true if the current page is not the first.
func (w Window) HasPrevious() bool {
	return w.Page > 1
}

// Len is the number of items visible on this page.
func (w Window) Len() int {
	return w.End - w.Start
}

// Slice returns the part of items covered by w.
func Slice[T any](items []T, w Window) []T {
	start := min(max(w.Start, 0), len(items))
	end := min(max(w.End, start), len(items))
	return items[start:end]
}

// Response wraps a paginated API response.
type Response struct {
	Data        interface{} `json:"data"`
	Total       int         `json:"total"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
	Links       []Link      `json:"links,omitempty"`
}

func NewResponse(data interface{}, w Window) *Response {
	return &Response{
		Data:        data,
		Total:       w.Total,
		Page:        w.Page,
		PageSize:    w.PageSize,
		TotalPages:  w.TotalPages,
		HasNext:     w.HasNext(),
		HasPrevious: w.HasPrevious(),
	}
}

// Link represents a single pagination link entry.
type Link struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

// Links generates self/first/previous/next/last links. pageURL builds the
// URL for a given page number.
func Links(w Window, pageURL func(page int) string) []Link {
	links := []Link{{Relation: "self", URL: pageURL(w.Page)}}
	if w.TotalPages == 0 {
		return links
	}

	links = append(links, Link{Relation: "first", URL: pageURL(1)})
	if w.HasPrevious() {
		links = append(links, Link{Relation: "previous", URL: pageURL(min(w.Page-1, w.TotalPages))})
	}
	if w.HasNext() {
		links = append(links, Link{Relation: "next", URL: pageURL(w.Page + 1)})
	}
	links = append(links, Link{Relation: "last", URL: pageURL(w.TotalPages)})
	return links
}
