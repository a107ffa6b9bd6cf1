package api

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/scholarstream/internal/auth"
	"github.com/Muhammadurasheed/scholarstream/internal/feed"
	"github.com/Muhammadurasheed/scholarstream/internal/models"
	"github.com/Muhammadurasheed/scholarstream/internal/view"
)

// Server exposes the matched feed over HTTP: the ranked/bucketed view, the
// pending-arrival count, the flush trigger, and stream status.
type Server struct {
	Echo    *echo.Echo
	feed    *feed.Service
	profile func() models.UserProfile
	log     *zap.Logger
}

func NewServer(f *feed.Service, profile func() models.UserProfile, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s := &Server{Echo: e, feed: f, profile: profile, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleOpportunities)
	api.GET("/pending", s.handlePending)
	api.GET("/stream", s.handleStreamStatus)

	protected := api.Group("")
	protected.Use(auth.Middleware)
	protected.POST("/flush", s.handleFlush)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleOpportunities returns the ranked view. Query params: search,
// location (all|local|regional|national|international), source (domain or
// platform), tab (all|scholarships|hackathons|bounties|competitions|
// urgent|high_match).
func (s *Server) handleOpportunities(c echo.Context) error {
	profile := s.profile()
	opts := view.Options{
		Search:      c.QueryParam("search"),
		Location:    view.LocationScope(c.QueryParam("location")),
		Source:      c.QueryParam("source"),
		UserCountry: profile.Country,
		UserState:   profile.State,
	}
	grouped := s.feed.View(profile, opts)

	switch tab := c.QueryParam("tab"); tab {
	case "", "all":
		return c.JSON(http.StatusOK, map[string]any{
			"opportunities": grouped.All,
			"counts":        countsOf(grouped),
			"recent_ids":    s.feed.RecentIDs(),
		})
	case "scholarships":
		return c.JSON(http.StatusOK, tabPayload(grouped.ByType.Scholarships, grouped, s.feed.RecentIDs()))
	case "hackathons":
		return c.JSON(http.StatusOK, tabPayload(grouped.ByType.Hackathons, grouped, s.feed.RecentIDs()))
	case "bounties":
		return c.JSON(http.StatusOK, tabPayload(grouped.ByType.Bounties, grouped, s.feed.RecentIDs()))
	case "competitions":
		return c.JSON(http.StatusOK, tabPayload(grouped.ByType.Competitions, grouped, s.feed.RecentIDs()))
	case "urgent":
		return c.JSON(http.StatusOK, tabPayload(grouped.Urgent, grouped, s.feed.RecentIDs()))
	case "high_match":
		return c.JSON(http.StatusOK, tabPayload(grouped.HighMatch, grouped, s.feed.RecentIDs()))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown tab: "+tab)
	}
}

func tabPayload(items []models.Opportunity, grouped view.Grouped, recentIDs []string) map[string]any {
	if items == nil {
		items = []models.Opportunity{}
	}
	return map[string]any{
		"opportunities": items,
		"counts":        countsOf(grouped),
		"recent_ids":    recentIDs,
	}
}

func countsOf(g view.Grouped) map[string]int {
	return map[string]int{
		"all":          len(g.All),
		"urgent":       len(g.Urgent),
		"high_match":   len(g.HighMatch),
		"scholarships": len(g.ByType.Scholarships),
		"hackathons":   len(g.ByType.Hackathons),
		"bounties":     len(g.ByType.Bounties),
		"competitions": len(g.ByType.Competitions),
	}
}

// handlePending backs the "N new opportunities" affordance.
func (s *Server) handlePending(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{
		"pending": s.feed.PendingCount(),
	})
}

func (s *Server) handleFlush(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing authenticated user")
	}

	drained := s.feed.Flush()
	if drained == nil {
		drained = []models.Opportunity{}
	}
	s.log.Info("flush requested",
		zap.String("user_id", userID.String()), zap.Int("flushed", len(drained)))
	return c.JSON(http.StatusOK, map[string]any{
		"flushed":       len(drained),
		"opportunities": drained,
	})
}

func (s *Server) handleStreamStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.feed.Status())
}
