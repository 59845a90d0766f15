package handlers

import (
	"net/http"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

// RegisterRoutes ожидает группу, уже закрытую AuthMiddleware
func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	applications := r.Group("/application")
	{
		// GET оставлен ради совместимости с клиентом
		applications.GET("/apply/:jobId", h.Submit)
		applications.GET("/get", h.GetAppliedJobs)
		applications.POST("/status/bulk", h.BulkUpdateStatus)
		applications.POST("/status/:applicationId/update", h.UpdateStatus)
		applications.GET("/recruiter/accepted", h.GetAcceptedApplicants)
		// один wildcard на уровне: :id это jobId для applicants и applicationId для open-chat
		applications.GET("/:id/applicants", h.GetApplicants)
		applications.POST("/:id/open-chat", h.OpenConversation)
	}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	application, err := h.applicationService.Submit(c.Request.Context(), h.GetDB(c), userID, c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusCreated, "Application submitted", gin.H{"application": application})
}

func (h *ApplicationHandler) GetAppliedJobs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	applications, err := h.applicationService.GetAppliedJobs(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"applications": applications})
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, conversationID, err := h.applicationService.UpdateStatus(c.Request.Context(), h.GetDB(c), userID, c.Param("applicationId"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "Application status updated", gin.H{
		"application":    application,
		"conversationId": conversationID,
	})
}

func (h *ApplicationHandler) BulkUpdateStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.BulkUpdateStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	results, err := h.applicationService.BulkUpdateStatus(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "Application statuses updated", gin.H{"results": results})
}

func (h *ApplicationHandler) GetAcceptedApplicants(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	applications, err := h.applicationService.GetAcceptedApplicants(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"applications": applications})
}

func (h *ApplicationHandler) GetApplicants(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	res, err := h.applicationService.GetApplicants(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"job": res.Job, "applications": res.Applications})
}

func (h *ApplicationHandler) OpenConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conv, err := h.applicationService.OpenConversation(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"conversationId": conv.ID, "conversation": conv})
}
