package api

import (
	"net/http"

	"domain-hunter/internal/models"
	"domain-hunter/internal/watchlist"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// watchlistView is a watchlist entry joined with its aggregate record and
// workflow stage for display.
type watchlistView struct {
	models.WatchlistEntry
	Record *models.DomainRecord `json:"record,omitempty"`
	Stage  string               `json:"stage,omitempty"`
}

// ListWatchlist returns all starred domains with their current record state
func (h *Handler) ListWatchlist(c *gin.Context) {
	entries, err := h.watchlist.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]watchlistView, 0, len(entries))
	for _, entry := range entries {
		view := watchlistView{WatchlistEntry: entry}
		if rec, err := h.records.Get(entry.Name); err == nil {
			view.Record = rec
		}
		if stage, ok := h.workflow.Stage(entry.Name); ok {
			view.Stage = string(stage)
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// ToggleWatchlist stars or un-stars a domain
func (h *Handler) ToggleWatchlist(c *gin.Context) {
	var request struct {
		Domain string `json:"domain" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	watched, err := h.watchlist.Toggle(request.Domain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domain":  request.Domain,
		"watched": watched,
	})
}

// UpdateWatchlistNotes replaces the notes on a watchlist entry
func (h *Handler) UpdateWatchlistNotes(c *gin.Context) {
	var request struct {
		Notes string `json:"notes"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := c.Param("name")
	if err := h.watchlist.UpdateNotes(name, request.Notes); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not on watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notes updated"})
}

// ExportWatchlist streams the watchlist as a CSV download
func (h *Handler) ExportWatchlist(c *gin.Context) {
	entries, err := h.watchlist.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := make([]watchlist.ExportRow, 0, len(entries))
	for _, entry := range entries {
		row := watchlist.ExportRow{Name: entry.Name, AddedAt: entry.AddedAt}

		if rec, err := h.records.Get(entry.Name); err == nil {
			row.TLD = rec.TLD
			row.Score = rec.Score.Overall
			row.Tier = rec.Score.Tier
			row.Source = rec.Source
		}
		if stage, ok := h.workflow.Stage(entry.Name); ok {
			row.Stage = string(stage)
		}

		rows = append(rows, row)
	}

	c.Header("Content-Disposition", `attachment; filename="watchlist.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := watchlist.ExportCSV(c.Writer, rows); err != nil {
		h.log.Error("watchlist export failed", zap.Error(err))
	}
}
