package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/claimsview/claimsview/internal/config"
	"github.com/claimsview/claimsview/internal/domain/claimlist"
	"github.com/claimsview/claimsview/internal/domain/claims"
	"github.com/claimsview/claimsview/internal/platform/clipboard"
	"github.com/claimsview/claimsview/internal/platform/middleware"
	"github.com/claimsview/claimsview/internal/platform/telemetry"
	"github.com/claimsview/claimsview/internal/platform/websocket"
	"github.com/claimsview/claimsview/internal/ui"
	"github.com/claimsview/claimsview/internal/viewstate"
	"github.com/claimsview/claimsview/pkg/pagination"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "claims-viewer",
		Short:         "Search, filter, sort and share views of insurance claims",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(urlCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	if lvl, err := cfg.Level(); err == nil {
		logger = logger.Level(lvl)
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the claims web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg, os.Stdout))
		},
	}
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := claims.NewService(logger)
	hub := websocket.NewHub(logger)
	loaded := svc.Start(ctx, cfg.LoadDelay, claims.GeneratedSource(cfg.RecordCount, cfg.RecordSeed))
	go claimlist.PublishLoadState(ctx, loaded, hub, logger)

	e, err := newServer(cfg, svc, hub, logger)
	if err != nil {
		return err
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("base_url", cfg.BaseURL).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires the middleware stack and routes around svc.
func newServer(cfg *config.Config, svc *claims.Service, hub *websocket.Hub, logger zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := claimlist.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	metrics := telemetry.NewProvider(telemetry.Config{ServiceVersion: version})
	metrics.GaugeFunc("claims_loaded", "Whether the claim records have finished loading.", func() float64 {
		if svc.Ready() {
			return 1
		}
		return 0
	})

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(metrics.MetricsMiddleware())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodHead},
		AllowHeaders:  []string{"Content-Type", "X-Request-ID", "If-None-Match"},
		ExposeHeaders: []string{"ETag", "Retry-After", "X-Request-ID"},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.ETag(0))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		status := "ok"
		if !svc.Ready() {
			status = "loading"
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  status,
			"version": version,
		})
	})

	e.GET("/metrics", metrics.PrometheusHandler())
	websocket.NewHandler(hub, cfg.CORSOrigins, logger).RegisterRoutes(e)

	handler := claimlist.NewHandler(svc, claimlist.Settings{
		BaseURL:        cfg.BaseURL,
		SearchDebounce: cfg.SearchDebounce,
		CopyFeedback:   cfg.CopyFeedback,
		Observer:       metrics,
	}, logger)
	handler.RegisterRoutes(e, apiV1)

	return e, nil
}

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Browse claims interactively in the terminal",
		Long: "Browse claims interactively in the terminal. The optional url (or bare\n" +
			"query string) seeds the view, e.g. \"?status=PENDING&sortField=serviceDate\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			start := "/claims"
			if len(args) == 1 {
				start = args[0]
			}
			loc, err := startLocation(start)
			if err != nil {
				return err
			}

			// The terminal is owned by the UI; logs go to a file or nowhere.
			logger := zerolog.Nop()
			if path, _ := cmd.Flags().GetString("log-file"); path != "" {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logger = zerolog.New(f).With().Timestamp().Logger()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc := claims.NewService(logger)
			loaded := svc.Start(ctx, cfg.LoadDelay, claims.GeneratedSource(cfg.RecordCount, cfg.RecordSeed))

			m := ui.New(svc, ui.Options{
				Location: loc,
				BaseURL:  cfg.BaseURL,
				Debounce: cfg.SearchDebounce,
				Copier:   clipboard.NewCopier(cfg.CopyFeedback, logger),
				Loaded:   loaded,
				Logger:   logger,
			})
			return ui.Run(ctx, m)
		},
	}
	cmd.Flags().String("log-file", "", "write logs to this file")
	return cmd
}

// startLocation accepts a full URL, a path with query or a bare query and
// returns the in-app location it names.
func startLocation(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "?") && strings.Contains(raw, "=") {
		raw = "?" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	loc := &url.URL{Path: u.Path, RawQuery: u.RawQuery}
	if loc.Path == "" || loc.Path == "/" {
		loc.Path = "/claims"
	}
	return loc, nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			query, _ := cmd.Flags().GetString("query")
			output, _ := cmd.Flags().GetString("output")

			loc, err := startLocation(query)
			if err != nil {
				return err
			}
			state := viewstate.Parse(loc.Query())

			svc := claims.NewService(newLogger(cfg, cmd.ErrOrStderr()))
			if err := svc.Load(cmd.Context(), 0, claims.GeneratedSource(cfg.RecordCount, cfg.RecordSeed)); err != nil {
				return err
			}
			res, err := svc.List(cmd.Context(), state.Query())
			if err != nil {
				return err
			}

			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pagination.NewResponse(res.Rows, res.Window()))
			case "table":
				return writeTable(cmd.OutOrStdout(), res)
			default:
				return fmt.Errorf("unknown output %q, want table or json", output)
			}
		},
	}
	cmd.Flags().String("query", "", `view query string, e.g. "search=john&status=PENDING&page=2"`)
	cmd.Flags().StringP("output", "o", "table", "output format: table or json")
	return cmd
}

func writeTable(w io.Writer, res claims.Result) error {
	switch {
	case res.Empty:
		_, err := fmt.Fprintln(w, "No claims found")
		return err
	case res.Total == 0:
		_, err := fmt.Fprintln(w, "No matching claims. Try adjusting your search or filter criteria.")
		return err
	}

	rows := make([][]string, 0, len(res.Rows))
	for i := range res.Rows {
		c := &res.Rows[i]
		rows = append(rows, []string{
			c.ID,
			c.PatientName(),
			c.ServiceDateLabel(),
			c.InsuranceCarrier,
			string(c.InsuranceType),
			c.AmountLabel(),
			string(c.Status),
			c.LastUpdatedLabel(),
			c.User,
			string(c.PMSSyncStatus),
			c.ProviderName(),
		})
	}
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Patient", "Service Date", "Carrier", "Type", "Amount", "Status", "Last Updated", "User", "PMS Sync", "Provider").
		Rows(rows...)

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if res.Page > res.TotalPages {
		_, err := fmt.Fprintf(w, "Page %d is past the last page (%d)\n", res.Page, res.TotalPages)
		return err
	}
	_, err := fmt.Fprintf(w, "Page %d of %d (%d claims)\n", res.Page, res.TotalPages, res.Total)
	return err
}

func urlCmd() *cobra.Command {
	var f urlFlags
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the shareable URL for a view",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			state, err := f.state()
			if err != nil {
				return err
			}

			loc := &url.URL{Path: "/claims", RawQuery: state.Encode().Encode()}
			share, err := viewstate.ShareURL(cfg.BaseURL, loc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), share)

			if f.copy {
				copier := clipboard.NewCopier(cfg.CopyFeedback, newLogger(cfg, cmd.ErrOrStderr()))
				if copier.Copy(share) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Copied!")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.search, "search", "", "patient name substring")
	cmd.Flags().StringVar(&f.status, "status", "", "REJECTED, PENDING, CALL or RESUBMITTED")
	cmd.Flags().StringVar(&f.sortField, "sort-field", "", "patientLastName, status, serviceDate or lastUpdated")
	cmd.Flags().StringVar(&f.sortDir, "sort-dir", "asc", "asc or desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "1-based page")
	cmd.Flags().IntVar(&f.pageSize, "page-size", pagination.DefaultPageSize, "10, 20, 25 or 50")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "also copy the URL to the clipboard")
	return cmd
}

type urlFlags struct {
	search    string
	status    string
	sortField string
	sortDir   string
	page      int
	pageSize  int
	copy      bool
}

// state validates the flags strictly; unlike URL parsing, a typo on the
// command line is an error rather than a silent default.
func (f urlFlags) state() (viewstate.ViewState, error) {
	s := viewstate.Defaults()
	s.Search = f.search
	s.SearchInput = f.search

	if f.status != "" {
		st, ok := claims.ParseStatus(f.status)
		if !ok {
			return s, fmt.Errorf("%w: %q", viewstate.ErrInvalidStatus, f.status)
		}
		s.Status = st
	}
	if f.sortField != "" {
		sf, ok := claims.ParseSortField(f.sortField)
		if !ok {
			return s, fmt.Errorf("invalid sort field %q", f.sortField)
		}
		s.SortField = sf
	}
	switch claims.SortDirection(f.sortDir) {
	case claims.SortAsc, claims.SortDesc:
		s.SortDir = claims.SortDirection(f.sortDir)
	default:
		return s, fmt.Errorf("invalid sort direction %q", f.sortDir)
	}
	if !pagination.ValidPageSize(f.pageSize) {
		return s, fmt.Errorf("%w: %d", viewstate.ErrInvalidPageSize, f.pageSize)
	}
	s.PageSize = f.pageSize
	s.Page = max(f.page, 1)
	return s, nil
}
