package api

import (
	"errors"
	"net/http"

	"domain-hunter/internal/models"
	"domain-hunter/internal/workflow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListCandidates returns the candidate stage
func (h *Handler) ListCandidates(c *gin.Context) {
	records, err := h.workflow.Candidates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListQueue returns the purchase queue
func (h *Handler) ListQueue(c *gin.Context) {
	records, err := h.workflow.Queued()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListOwned returns the owned domains with profile state
func (h *Handler) ListOwned(c *gin.Context) {
	owned, err := h.workflow.Owned()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type ownedView struct {
		ID            uint   `json:"id"`
		Name          string `json:"name"`
		TLD           string `json:"tld"`
		Score         int    `json:"score"`
		Tier          string `json:"tier"`
		PurchasedAt   any    `json:"purchased_at"`
		ProfileStatus string `json:"profile_status"`
		Profile       any    `json:"profile,omitempty"`
		ProfileError  string `json:"profile_error,omitempty"`
		SiteCreated   bool   `json:"site_created"`
	}

	views := make([]ownedView, 0, len(owned))
	for _, o := range owned {
		view := ownedView{
			ID:            o.ID,
			Name:          o.Name,
			TLD:           o.TLD,
			Score:         o.Score.Overall,
			Tier:          string(o.Score.Tier),
			PurchasedAt:   o.PurchasedAt,
			ProfileStatus: string(o.ProfileStatus),
			ProfileError:  o.ProfileError,
			SiteCreated:   o.SiteCreated,
		}
		if p := o.Profile(); p != nil {
			view.Profile = p
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// AddCandidate pulls a record from the working set into the candidate stage
func (h *Handler) AddCandidate(c *gin.Context) {
	rec, ok := h.bindWorkflowDomain(c)
	if !ok {
		return
	}

	if err := h.workflow.AddCandidate(*rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"domain": rec.Name, "stage": "candidate"})
}

// QueueDomain moves a candidate forward or quick-queues a record directly
func (h *Handler) QueueDomain(c *gin.Context) {
	rec, ok := h.bindWorkflowDomain(c)
	if !ok {
		return
	}

	// Promote when the name is already a candidate, otherwise quick-queue.
	err := h.workflow.Promote(rec.Name)
	if errors.Is(err, workflow.ErrNotFound) {
		err = h.workflow.QuickQueue(*rec)
	}
	if err != nil {
		h.workflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"domain": rec.Name, "stage": "queued"})
}

// DiscardDomain removes a candidate or queued record
func (h *Handler) DiscardDomain(c *gin.Context) {
	if err := h.workflow.Discard(c.Param("name")); err != nil {
		h.workflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Domain discarded"})
}

// MarkPurchased transitions a queued domain to owned and starts profile
// generation in the background
func (h *Handler) MarkPurchased(c *gin.Context) {
	owned, err := h.workflow.MarkPurchased(c.Param("name"))
	if err != nil {
		h.workflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, owned)
}

// RetryProfile re-runs profile generation for a failed owned domain
func (h *Handler) RetryProfile(c *gin.Context) {
	name := c.Param("name")
	if err := h.workflow.RetryProfile(name); err != nil {
		h.workflowError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"domain": name, "profile_status": "generating"})
}

// CreateSite asks the site builder to provision a website for an owned
// domain; siteCreated flips once the builder confirms
func (h *Handler) CreateSite(c *gin.Context) {
	name := c.Param("name")

	// The domain must be owned; profile readiness is not required.
	if _, err := h.workflow.GetOwned(name); err != nil {
		h.workflowError(c, err)
		return
	}

	go func() {
		if err := h.siteBuilder.CreateSite(name); err != nil {
			h.log.Warn("site creation failed", zap.String("domain", name), zap.Error(err))
			return
		}
		if err := h.workflow.MarkSiteCreated(name); err != nil {
			h.log.Warn("site flag not recorded", zap.String("domain", name), zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"domain": name, "site": "provisioning"})
}

// bindWorkflowDomain resolves the request body's domain name against the
// aggregate working set.
func (h *Handler) bindWorkflowDomain(c *gin.Context) (*models.DomainRecord, bool) {
	var request struct {
		Domain string `json:"domain" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	rec, err := h.records.Get(request.Domain)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not in working set"})
		return nil, false
	}

	return rec, true
}

func (h *Handler) workflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrGenerationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
