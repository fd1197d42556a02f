package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/usecases"
)

// regionBody is the wire form of a drawn rectangle.
type regionBody struct {
	North *float64 `json:"north"`
	South *float64 `json:"south"`
	East  *float64 `json:"east"`
	West  *float64 `json:"west"`
}

func (b regionBody) region() (domain.Region, error) {
	if b.North == nil || b.South == nil || b.East == nil || b.West == nil {
		return domain.Region{}, errors.New("region requires north, south, east and west")
	}
	return domain.NewRegion(*b.North, *b.South, *b.East, *b.West)
}

// SnapshotRequest asks for the business snapshot of a region.
type SnapshotRequest struct {
	SessionID string     `json:"session_id"`
	Region    regionBody `json:"region"`
}

// AnalyzeRequest asks for a full analysis of a region.
type AnalyzeRequest struct {
	SessionID  string      `json:"session_id"`
	UserID     string      `json:"user_id"`
	Tier       domain.Tier `json:"tier"`
	Region     regionBody  `json:"region"`
	Language   string      `json:"language"`
	SkipSearch bool        `json:"skip_search"`
}

// PremiumRequest asks for a long-form report.
type PremiumRequest struct {
	UserID       string                   `json:"user_id"`
	Tier         domain.Tier              `json:"tier"`
	Region       regionBody               `json:"region"`
	Language     string                   `json:"language"`
	Snapshot     *domain.BusinessSnapshot `json:"snapshot"`
	BasicSummary string                   `json:"basic_summary"`
}

// SnapshotResponse is returned by the snapshot endpoint.
type SnapshotResponse struct {
	Snapshot   *domain.BusinessSnapshot `json:"snapshot"`
	Categories []domain.LabelCount      `json:"categories"`
	Prices     []domain.LabelCount      `json:"prices"`
	Search     usecases.SearchReport    `json:"search"`
}

// AnalysisResponse is returned by the analyze endpoint.
type AnalysisResponse struct {
	Analysis *domain.Analysis      `json:"analysis"`
	Search   usecases.SearchReport `json:"search"`
}

// SnapshotHandler builds (or loads from cache) the snapshot for a region.
func SnapshotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SnapshotRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		region, err := req.Region.region()
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		snap, report, err := deps.Analyses.Snapshot(c.UserContext(), req.SessionID, region)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(SnapshotResponse{
			Snapshot:   snap,
			Categories: snap.Categories(),
			Prices:     snap.Prices(),
			Search:     report,
		})
	}
}

// AnalyzeHandler runs the full pipeline. Free-tier users are gated by the
// quota checker before any provider is called.
func AnalyzeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req AnalyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		region, err := req.Region.region()
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		tier, err := parseTier(req.Tier)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ctx := c.UserContext()
		gated := deps.Quota != nil && req.UserID != "" && tier == domain.TierFree
		if gated {
			ok, err := deps.Quota.Reserve(ctx, req.UserID, tier)
			if err != nil {
				return writeError(c, err)
			}
			if !ok {
				return errForbidden(c, "quota_exceeded", "search limit reached, upgrade to continue analyzing")
			}
		}

		analysis, report, err := deps.Analyses.Analyze(ctx, usecases.AnalyzeRequest{
			SessionID:  req.SessionID,
			UserID:     req.UserID,
			Region:     region,
			Language:   req.Language,
			SkipSearch: req.SkipSearch,
		})
		if err != nil {
			if gated {
				if rerr := deps.Quota.Release(ctx, req.UserID, tier); rerr != nil {
					LoggerFromCtx(ctx).Warn("quota release failed", "user_id", req.UserID, "error", rerr)
				}
			}
			return writeError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(AnalysisResponse{Analysis: analysis, Search: report})
	}
}

// ClearSessionHandler cancels the in-flight analysis of a session.
func ClearSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if strings.TrimSpace(id) == "" {
			return errBadRequest(c, "session id is required")
		}
		return c.JSON(fiber.Map{
			"session_id": id,
			"cancelled":  deps.Analyses.Clear(id),
		})
	}
}

// PremiumReportHandler starts the premium report workflow for pro users.
func PremiumReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Premium == nil {
			return errUnavailable(c, "premium reports are not enabled")
		}

		var req PremiumRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.UserID == "" {
			return errBadRequest(c, "user_id is required")
		}
		if req.Tier != domain.TierPro {
			return errForbidden(c, "premium_required", "premium subscription required")
		}
		region, err := req.Region.region()
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		workflowID, err := deps.Premium.RequestReport(c.UserContext(), domain.PremiumReportRequest{
			UserID:       req.UserID,
			Region:       region,
			Language:     req.Language,
			Snapshot:     req.Snapshot,
			BasicSummary: req.BasicSummary,
		})
		if err != nil {
			return writeError(c, err)
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"workflow_id": workflowID,
			"status":      "started",
		})
	}
}

// ListAnalysesHandler returns a user's stored analyses, newest first.
func ListAnalysesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return errBadRequest(c, "user_id query parameter is required")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		items, total, err := deps.Analyses.History(c.UserContext(), userID, offset, limit)
		if err != nil {
			return writeError(c, err)
		}
		if items == nil {
			items = []domain.Analysis{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: items, Pagination: pg})
	}
}

// GetAnalysisHandler returns one stored analysis by ID.
func GetAnalysisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := deps.Analyses.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(a)
	}
}

// NearbyAnalysesHandler lists stored analyses centered near ?lat=&lon=.
// radius is in meters (default 1000).
func NearbyAnalysesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon query parameters are required")
		}
		center := domain.GeoPoint{Lat: c.QueryFloat("lat"), Lon: c.QueryFloat("lon")}
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 20)

		items, err := deps.Analyses.Nearby(c.UserContext(), center, radius, limit)
		if err != nil {
			return writeError(c, err)
		}
		if items == nil {
			items = []domain.Analysis{}
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// FormatSectionsHandler splits a narrative posted as plain text into sections.
func FormatSectionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		markers := usecases.SectionMarkers
		if c.Query("kind") == string(domain.ReportPremium) {
			markers = usecases.PremiumMarkers
		}
		return c.JSON(fiber.Map{
			"sections": usecases.FormatSectionsWith(string(c.Body()), markers),
		})
	}
}

func parseTier(t domain.Tier) (domain.Tier, error) {
	switch t {
	case "":
		return domain.TierFree, nil
	case domain.TierFree, domain.TierBasic, domain.TierPro:
		return t, nil
	default:
		return "", errors.New("tier must be one of free, basic, pro")
	}
}
