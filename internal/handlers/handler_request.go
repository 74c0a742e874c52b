package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/flowgate/internal/core/domain"
	portssvc "github.com/SscSPs/flowgate/internal/core/ports/services"
	"github.com/SscSPs/flowgate/internal/dto"
	"github.com/SscSPs/flowgate/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestHandler handles HTTP requests for the request lifecycle and its audit trail.
type requestHandler struct {
	workflowService portssvc.WorkflowSvcFacade
	auditService    portssvc.AuditTrailSvc
}

// newRequestHandler creates a new requestHandler.
func newRequestHandler(ws portssvc.WorkflowSvcFacade, as portssvc.AuditTrailSvc) *requestHandler {
	return &requestHandler{
		workflowService: ws,
		auditService:    as,
	}
}

// registerRequestRoutes registers the lifecycle routes under /requests.
func registerRequestRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newRequestHandler(services.Workflow, services.Audit)
	q := newQueryHandler(services.Query)

	requests := rg.Group("/requests")
	{
		requests.POST("", h.createRequest)

		// Listings; static segments take precedence over :id.
		requests.GET("/my", q.listMyRequests)
		requests.GET("/my/dashboard", q.myDashboard)
		requests.GET("/pending", q.listPendingApprovals)
		requests.GET("/all", q.listAllRequests)

		requests.GET("/:id", h.getRequest)
		requests.PUT("/:id", h.updateRequest)
		requests.POST("/:id/submit", h.submitRequest)
		requests.POST("/:id/approve", h.approveRequest)
		requests.POST("/:id/reject", h.rejectRequest)
		requests.GET("/:id/logs", h.listRequestLogs)
		requests.GET("/:id/logs/verify", h.verifyRequestLogs)
	}
}

// actorFromContext aborts with 401 when no authenticated actor is present.
func actorFromContext(c *gin.Context, logger *slog.Logger) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}

// createRequest godoc
// @Summary Create a new request
// @Description Creates a DRAFT request owned by the caller and assigned to an approver.
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateRequestRequest true "Request details"
// @Success 201 {object} dto.RequestResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create request"
// @Security BearerAuth
// @Router /requests [post]
func (h *requestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRequest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.workflowService.CreateRequest(c.Request.Context(), actor, req.ToNewRequestInput())
	if err != nil {
		respondError(c, logger, err, "create request")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRequestResponse(&result.Request))
}

// updateRequest godoc
// @Summary Edit a draft request
// @Description Partially updates title, type or description of a DRAFT request. Only the creator may edit.
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   id path string true "Request ID"
// @Param   request body dto.UpdateRequestRequest true "Fields to change"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} map[string]string "Invalid input or request not in DRAFT"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id} [put]
func (h *requestHandler) updateRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("request_id", c.Param("id")))
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateRequestRequest
	// An empty body is an edit that changes nothing.
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("Failed to bind JSON for UpdateRequest", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	result, err := h.workflowService.EditRequest(c.Request.Context(), actor, c.Param("id"), req.ToRequestChanges())
	if err != nil {
		respondError(c, logger, err, "update request")
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponse(&result.Request))
}

type transitionFunc func(h *requestHandler, c *gin.Context, actor domain.Actor, id string) (*domain.WorkflowResult, error)

// runTransition is shared by the body-less lifecycle endpoints.
func (h *requestHandler) runTransition(c *gin.Context, action string, fn transitionFunc) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("request_id", c.Param("id")))
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	result, err := fn(h, c, actor, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, action)
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponse(&result.Request))
}

// submitRequest godoc
// @Summary Submit a draft request
// @Description Moves a DRAFT request to SUBMITTED. Only the creator may submit.
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} map[string]string "Request not in DRAFT"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id}/submit [post]
func (h *requestHandler) submitRequest(c *gin.Context) {
	h.runTransition(c, "submit request", func(h *requestHandler, c *gin.Context, actor domain.Actor, id string) (*domain.WorkflowResult, error) {
		return h.workflowService.SubmitRequest(c.Request.Context(), actor, id)
	})
}

// approveRequest godoc
// @Summary Approve a submitted request
// @Description Moves a SUBMITTED request to APPROVED. Only the assigned approver holding role APPROVER may approve.
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} map[string]string "Request not SUBMITTED"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id}/approve [post]
func (h *requestHandler) approveRequest(c *gin.Context) {
	h.runTransition(c, "approve request", func(h *requestHandler, c *gin.Context, actor domain.Actor, id string) (*domain.WorkflowResult, error) {
		return h.workflowService.ApproveRequest(c.Request.Context(), actor, id)
	})
}

// rejectRequest godoc
// @Summary Reject a submitted request
// @Description Moves a SUBMITTED request to REJECTED. Only the assigned approver holding role APPROVER may reject.
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} map[string]string "Request not SUBMITTED"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id}/reject [post]
func (h *requestHandler) rejectRequest(c *gin.Context) {
	h.runTransition(c, "reject request", func(h *requestHandler, c *gin.Context, actor domain.Actor, id string) (*domain.WorkflowResult, error) {
		return h.workflowService.RejectRequest(c.Request.Context(), actor, id)
	})
}

// getRequest godoc
// @Summary Get a request
// @Description Returns a request to its creator, its assigned approver, or an ADMIN.
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id} [get]
func (h *requestHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("request_id", c.Param("id")))
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	req, err := h.workflowService.GetRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "get request")
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponse(req))
}

// listRequestLogs godoc
// @Summary List a request's audit trail
// @Description Returns every audit entry of the request, newest first.
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {array} dto.AuditLogResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id}/logs [get]
func (h *requestHandler) listRequestLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("request_id", c.Param("id")))
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	entries, err := h.auditService.ListRequestLogs(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "list audit logs")
		return
	}

	c.JSON(http.StatusOK, dto.ToListAuditLogsResponse(entries).Logs)
}

// verifyRequestLogs godoc
// @Summary Verify a request's audit trail
// @Description Recomputes the integrity chain and status continuity of the request's audit trail.
// @Tags requests
// @Produce  json
// @Param   id path string true "Request ID"
// @Success 200 {object} domain.TrailVerification
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Request not found"
// @Security BearerAuth
// @Router /requests/{id}/logs/verify [get]
func (h *requestHandler) verifyRequestLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c).With(slog.String("request_id", c.Param("id")))
	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	result, err := h.auditService.VerifyAuditTrail(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "verify audit logs")
		return
	}

	c.JSON(http.StatusOK, result)
}
