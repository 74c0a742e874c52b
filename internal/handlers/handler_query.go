package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
	"github.com/SscSPs/flowgate/internal/dto"
	"github.com/SscSPs/flowgate/internal/middleware"
	"github.com/gin-gonic/gin"
)

// queryHandler serves the read-only request listings.
type queryHandler struct {
	queryService portssvc.RequestQuerySvc
}

func newQueryHandler(qs portssvc.RequestQuerySvc) *queryHandler {
	return &queryHandler{queryService: qs}
}

func (h *queryHandler) bindParams(c *gin.Context, logger *slog.Logger) (dto.ListRequestsParams, bool) {
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return params, false
	}
	return params, true
}

// listMyRequests godoc
// @Summary List my requests
// @Description Lists requests created by the caller, newest first.
// @Tags queries
// @Produce  json
// @Param   status query string false "Filter by status" Enums(DRAFT, SUBMITTED, APPROVED, REJECTED)
// @Param   type query string false "Filter by type" Enums(LEAVE, EXPENSE, ACCESS)
// @Param   limit query int false "Page size (max 100)" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /requests/my [get]
func (h *queryHandler) listMyRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	params, ok := h.bindParams(c, logger)
	if !ok {
		return
	}

	resp, err := h.queryService.ListMyRequests(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, logger, err, "list requests")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// myDashboard godoc
// @Summary My dashboard
// @Description Counts the caller's own requests by status.
// @Tags queries
// @Produce  json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /requests/my/dashboard [get]
func (h *queryHandler) myDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	resp, err := h.queryService.MyDashboard(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "build dashboard")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listPendingApprovals godoc
// @Summary List pending approvals
// @Description Lists SUBMITTED requests assigned to the caller. Requires role APPROVER.
// @Tags queries
// @Produce  json
// @Param   type query string false "Filter by type" Enums(LEAVE, EXPENSE, ACCESS)
// @Param   limit query int false "Page size (max 100)" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Security BearerAuth
// @Router /requests/pending [get]
func (h *queryHandler) listPendingApprovals(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	params, ok := h.bindParams(c, logger)
	if !ok {
		return
	}

	resp, err := h.queryService.ListPendingApprovals(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, logger, err, "list pending approvals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listAllRequests godoc
// @Summary List all requests
// @Description Lists every request matching the filters. Requires role ADMIN.
// @Tags queries
// @Produce  json
// @Param   status query string false "Filter by status" Enums(DRAFT, SUBMITTED, APPROVED, REJECTED)
// @Param   type query string false "Filter by type" Enums(LEAVE, EXPENSE, ACCESS)
// @Param   createdBy query string false "Filter by creator"
// @Param   assignedApprover query string false "Filter by assigned approver"
// @Param   limit query int false "Page size (max 100)" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Security BearerAuth
// @Router /requests/all [get]
func (h *queryHandler) listAllRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	params, ok := h.bindParams(c, logger)
	if !ok {
		return
	}

	resp, err := h.queryService.ListAllRequests(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, logger, err, "list requests")
		return
	}
	c.JSON(http.StatusOK, resp)
}
