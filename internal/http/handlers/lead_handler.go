package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lead-management-server/internal/leadfilter"
	"lead-management-server/internal/models"
	"lead-management-server/internal/services"
	"lead-management-server/internal/utils"
)

type LeadHandler struct {
	leads *services.LeadService
}

func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

func (h *LeadHandler) Create(c *gin.Context) {
	var req models.LeadCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	lead, err := h.leads.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "lead created successfully", gin.H{"data": lead})
}

// List compiles the query parameters into a filter specification and returns
// the matching page plus pagination metadata.
func (h *LeadHandler) List(c *gin.Context) {
	query, err := leadfilter.Compile(c.Request.URL.Query())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	leads, total, err := h.leads.List(c.Request.Context(), query)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if leads == nil {
		leads = []models.Lead{}
	}

	pagination := utils.NewPagination(query.Page, query.Limit, total)
	c.JSON(http.StatusOK, gin.H{
		"data":       leads,
		"page":       pagination.Page,
		"limit":      pagination.Limit,
		"total":      pagination.Total,
		"totalPages": pagination.TotalPages,
	})
}

func (h *LeadHandler) GetByID(c *gin.Context) {
	lead, err := h.leads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "lead retrieved successfully", gin.H{"data": lead})
}

func (h *LeadHandler) Update(c *gin.Context) {
	var req models.LeadUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body"))
		return
	}

	lead, err := h.leads.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "lead updated successfully", gin.H{"data": lead})
}

func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.leads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "lead deleted successfully", nil)
}
