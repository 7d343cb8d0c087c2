// Package claimlist serves the claims list over HTTP: a server-rendered
// table whose URL carries the whole view state, and a JSON API over the
// same query pipeline.
package claimlist

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/claimsview/claimsview/internal/domain/claims"
	"github.com/claimsview/claimsview/internal/viewstate"
	"github.com/claimsview/claimsview/pkg/pagination"
)

// Settings tunes the rendered page.
type Settings struct {
	// BaseURL is the public origin used for shareable links.
	BaseURL        string
	SearchDebounce time.Duration
	CopyFeedback   time.Duration
	// Observer, when set, sees every list query the handler runs.
	Observer QueryObserver
}

// QueryObserver records list queries, e.g. for metrics.
type QueryObserver interface {
	ObserveQuery(status, sortField string, matched int)
}

type Handler struct {
	svc      *claims.Service
	settings Settings
	logger   zerolog.Logger
}

func NewHandler(svc *claims.Service, settings Settings, logger zerolog.Logger) *Handler {
	if settings.SearchDebounce <= 0 {
		settings.SearchDebounce = viewstate.DefaultDebounce
	}
	if settings.CopyFeedback <= 0 {
		settings.CopyFeedback = 2 * time.Second
	}
	return &Handler{svc: svc, settings: settings, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, api *echo.Group) {
	e.GET("/", h.Index)
	e.GET("/claims", h.Page)
	e.StaticFS("/static", echo.MustSubFS(assets, "static"))

	api.GET("/claims", h.List)
	api.GET("/claims/options", h.ListOptions)
	api.GET("/claims/:id", h.Get)
}

// Index sends the bare root to the list, keeping any query.
func (h *Handler) Index(c echo.Context) error {
	target := url.URL{Path: "/claims", RawQuery: c.Request().URL.RawQuery}
	return c.Redirect(http.StatusFound, target.String())
}

// Page renders the claims table for the view state in the request URL.
// Non-canonical queries and pages past the end redirect, so the address bar
// always shows the view actually rendered.
func (h *Handler) Page(c echo.Context) error {
	reqURL := c.Request().URL
	state := viewstate.Parse(reqURL.Query())

	if canon := state.Canonical(reqURL); canon.RawQuery != reqURL.RawQuery {
		return c.Redirect(http.StatusFound, canon.RequestURI())
	}

	res, err := h.svc.List(c.Request().Context(), state.Query())
	if errors.Is(err, claims.ErrLoading) {
		return c.Render(http.StatusOK, "loading.html", loadingView{Title: pageTitle, Events: "/ws?topics=" + EventsTopic})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.observe(state, res)

	if res.TotalPages > 0 && state.Page > res.TotalPages {
		_, patch := state.WithPage(res.TotalPages)
		return c.Redirect(http.StatusFound, viewstate.Href(reqURL, patch))
	}

	share, err := viewstate.ShareURL(h.settings.BaseURL, reqURL)
	if err != nil {
		h.logger.Warn().Err(err).Str("base_url", h.settings.BaseURL).Msg("cannot build share url")
		share = reqURL.String()
	}
	return c.Render(http.StatusOK, "claims.html", newPageView(reqURL, state, res, share, h.settings))
}

// listResponse is the JSON list payload: one page of claims plus the view
// state it was computed from.
type listResponse struct {
	*pagination.Response
	View  viewParams `json:"view"`
	Empty bool       `json:"empty"`
}

type viewParams struct {
	Search    string `json:"search"`
	Status    string `json:"status,omitempty"`
	SortField string `json:"sort_field,omitempty"`
	SortDir   string `json:"sort_dir"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

func (h *Handler) List(c echo.Context) error {
	reqURL := c.Request().URL
	state := viewstate.Parse(reqURL.Query())

	res, err := h.svc.List(c.Request().Context(), state.Query())
	if err != nil {
		return h.serviceError(c, err)
	}
	h.observe(state, res)

	resp := pagination.NewResponse(res.Rows, res.Window())
	resp.Links = pagination.Links(res.Window(), func(page int) string {
		_, patch := state.WithPage(page)
		return viewstate.Href(reqURL, patch)
	})
	return c.JSON(http.StatusOK, listResponse{
		Response: resp,
		View: viewParams{
			Search:    state.Search,
			Status:    string(state.Status),
			SortField: string(state.SortField),
			SortDir:   string(state.SortDir),
			Page:      state.Page,
			PageSize:  state.PageSize,
		},
		Empty: res.Empty,
	})
}

func (h *Handler) Get(c echo.Context) error {
	claim, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, claim)
}

// ListOptions describes the values each view parameter accepts.
func (h *Handler) ListOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"statuses":          claims.Statuses,
		"sort_fields":       claims.SortFields,
		"sort_directions":   []claims.SortDirection{claims.SortAsc, claims.SortDesc},
		"page_sizes":        pagination.PageSizes,
		"default_page_size": pagination.DefaultPageSize,
	})
}

func (h *Handler) observe(state viewstate.ViewState, res claims.Result) {
	if h.settings.Observer != nil {
		h.settings.Observer.ObserveQuery(string(state.Status), string(state.SortField), res.Total)
	}
}

func (h *Handler) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, claims.ErrLoading):
		c.Response().Header().Set("Retry-After", "1")
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, claims.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "claim not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
