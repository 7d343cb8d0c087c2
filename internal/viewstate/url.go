package viewstate

import (
	"errors"
	"net/url"
)

var (
	ErrInvalidStatus   = errors.New("invalid claim status")
	ErrInvalidPageSize = errors.New("invalid page size")
)

// Patch is a set of query parameter updates. An empty value removes the
// parameter; keys not in the patch are left alone.
type Patch map[string]string

// Apply returns a copy of u with p merged into its query string. u is not
// modified.
func Apply(u *url.URL, p Patch) *url.URL {
	out := *u
	q := u.Query()
	for k, v := range p {
		if v == "" {
			q.Del(k)
		} else {
			q.Set(k, v)
		}
	}
	out.RawQuery = q.Encode()
	out.ForceQuery = false
	return &out
}

// Clear returns a copy of u without any query string.
func Clear(u *url.URL) *url.URL {
	out := *u
	out.RawQuery = ""
	out.ForceQuery = false
	return &out
}

// Href renders the link that applies p to base, for use in rendered
// controls.
func Href(base *url.URL, p Patch) string {
	return Apply(base, p).String()
}

// ShareURL joins the configured public base with the location's path and
// query, producing the address a user would copy.
func ShareURL(base string, location *url.URL) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref := &url.URL{Path: location.Path, RawQuery: location.RawQuery}
	return b.ResolveReference(ref).String(), nil
}
