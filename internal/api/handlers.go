package api

import (
	"errors"
	"net/http"
	"strconv"

	"domain-hunter/internal/aggregate"
	"domain-hunter/internal/importer"
	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"
	"domain-hunter/internal/services"
	"domain-hunter/internal/watchlist"
	"domain-hunter/internal/workflow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds service dependencies
type Handler struct {
	records     *aggregate.Store
	watchlist   *watchlist.Store
	workflow    *workflow.Service
	scraper     *services.ScraperService
	enrich      *services.EnrichService
	vendor      *services.VendorService
	siteBuilder *services.SiteBuilderService
	authService *services.AuthService
	log         logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	records *aggregate.Store,
	watch *watchlist.Store,
	wf *workflow.Service,
	scraper *services.ScraperService,
	enrich *services.EnrichService,
	vendor *services.VendorService,
	siteBuilder *services.SiteBuilderService,
	authService *services.AuthService,
	log logger.Logger,
) *Handler {
	return &Handler{
		records:     records,
		watchlist:   watch,
		workflow:    wf,
		scraper:     scraper,
		enrich:      enrich,
		vendor:      vendor,
		siteBuilder: siteBuilder,
		authService: authService,
		log:         log,
	}
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, handler *Handler) {
	api := r.Group("/api/v1")
	{
		// Authentication (no auth required)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/validate", handler.ValidateToken)
		api.POST("/auth/change-password", handler.ChangePassword)

		// Aggregate working set
		api.GET("/domains", handler.ListDomains)
		api.POST("/domains/import", handler.ImportManual)
		api.POST("/domains/import/csv", handler.ImportVendorCSV)
		api.POST("/domains/scrape", handler.Scrape)
		api.POST("/domains/enrich", handler.EnrichDomains)
		api.GET("/vendor/status", handler.VendorStatus)

		// Watchlist
		api.GET("/watchlist", handler.ListWatchlist)
		api.POST("/watchlist/toggle", handler.ToggleWatchlist)
		api.PUT("/watchlist/:name/notes", handler.UpdateWatchlistNotes)
		api.GET("/watchlist/export", handler.ExportWatchlist)

		// Acquisition workflow
		api.GET("/workflow/candidates", handler.ListCandidates)
		api.GET("/workflow/queue", handler.ListQueue)
		api.GET("/workflow/owned", handler.ListOwned)
		api.POST("/workflow/candidates", handler.AddCandidate)
		api.POST("/workflow/queue", handler.QueueDomain)
		api.DELETE("/workflow/:name", handler.DiscardDomain)
		api.POST("/workflow/:name/purchase", handler.MarkPurchased)
		api.POST("/workflow/:name/retry-profile", handler.RetryProfile)
		api.POST("/workflow/:name/create-site", handler.CreateSite)

		// Dashboard statistics
		api.GET("/dashboard/stats", handler.GetStats)

		// System settings
		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.UpdateSettings)
	}
}

// ListDomains returns a filtered, sorted, paginated view of the working set
func (h *Handler) ListDomains(c *gin.Context) {
	filter := aggregate.Filter{
		Keywords: c.Query("keyword"),
	}
	if src := c.Query("source"); src != "" {
		filter.Source = models.SourceChannel(src)
	}
	if tier := c.Query("tier"); tier != "" {
		parsed, ok := models.ParseTier(tier)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tier: " + tier})
			return
		}
		filter.Tier = parsed
	}
	if min := c.Query("min_score"); min != "" {
		v, err := strconv.Atoi(min)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_score"})
			return
		}
		filter.MinScore = v
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	records, total, err := h.records.View(filter, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domains": records,
		"total":   total,
		"page":    page,
	})
}

// ImportManual imports pasted free text
func (h *Handler) ImportManual(c *gin.Context) {
	var request struct {
		Text string `json:"text" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := importer.NormalizeManual(request.Text)
	inserted, err := h.records.InsertBatch(res.Records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parsed":   len(res.Records),
		"dropped":  res.Dropped,
		"imported": inserted,
	})
}

// ImportVendorCSV imports a vendor CSV export. Payloads that do not look
// like the vendor format are imported as plain text instead.
func (h *Handler) ImportVendorCSV(c *gin.Context) {
	var request struct {
		Payload string `json:"payload" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := importer.NormalizeVendorCSV(request.Payload)
	inserted, err := h.records.InsertBatch(res.Records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	detected := len(res.Records) > 0 && res.Records[0].Source == models.SourceVendorCSV
	c.JSON(http.StatusOK, gin.H{
		"vendor_format": detected,
		"parsed":        len(res.Records),
		"dropped":       res.Dropped,
		"imported":      inserted,
	})
}

// Scrape pulls listings from the free-scrape channel into the working set
func (h *Handler) Scrape(c *gin.Context) {
	var request struct {
		Keyword string `json:"keyword"`
	}
	// Body is optional; an empty keyword scrapes the default listing.
	_ = c.ShouldBindJSON(&request)

	records, err := h.scraper.Fetch(request.Keyword)
	if err != nil {
		var scrapeErr *services.ScrapeError
		if errors.As(err, &scrapeErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           scrapeErr.Message,
				"action_required": scrapeErr.ActionRequired,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	inserted, err := h.records.InsertBatch(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fetched":  len(records),
		"imported": inserted,
	})
}

// EnrichDomains fetches vendor metrics for the named domains in the
// background and merges them in as responses arrive
func (h *Handler) EnrichDomains(c *gin.Context) {
	var request struct {
		Domains []string `json:"domains" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.vendor.HasCredentials() {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "vendor API key not configured"})
		return
	}

	go func(names []string) {
		if _, err := h.enrich.EnrichDomains(names); err != nil {
			h.log.Warn("background enrichment failed", zap.Error(err))
		}
	}(request.Domains)

	c.JSON(http.StatusAccepted, gin.H{"enriching": len(request.Domains)})
}

// VendorStatus reports whether enrichment is available
func (h *Handler) VendorStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": h.vendor.HasCredentials()})
}

// GetStats retrieves dashboard statistics
func (h *Handler) GetStats(c *gin.Context) {
	records, err := h.records.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tiers := map[models.Tier]int{}
	for _, rec := range records {
		tiers[rec.Score.Tier]++
	}

	candidates, _ := h.workflow.Candidates()
	queued, _ := h.workflow.Queued()
	owned, _ := h.workflow.Owned()
	watched, _ := h.watchlist.List()

	c.JSON(http.StatusOK, gin.H{
		"total":      len(records),
		"gold":       tiers[models.TierGold],
		"silver":     tiers[models.TierSilver],
		"bronze":     tiers[models.TierBronze],
		"candidates": len(candidates),
		"queued":     len(queued),
		"owned":      len(owned),
		"watched":    len(watched),
	})
}
