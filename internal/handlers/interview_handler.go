package handlers

import (
	"net/http"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	*BaseHandler
	interviewService services.InterviewService
}

func NewInterviewHandler(base *BaseHandler, interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		BaseHandler:      base,
		interviewService: interviewService,
	}
}

func (h *InterviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	interviews := r.Group("/interviews")
	{
		interviews.POST("/schedule", h.Schedule)
		interviews.GET("/applicant", h.ListForApplicant)
		interviews.GET("/:applicationId", h.GetByApplication)
	}
}

func (h *InterviewHandler) Schedule(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ScheduleInterviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.interviewService.Schedule(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	message := "Interview scheduled"
	if application.Interview.Kind == models.InterviewKindWrittenExam {
		message = "Written exam scheduled"
	}
	success(c, http.StatusOK, message, gin.H{
		"meeting": dto.MeetingResponse{
			MeetingLink: application.Interview.MeetingLink,
			EventID:     application.Interview.EventID,
		},
		"interview": application.Interview,
	})
}

func (h *InterviewHandler) ListForApplicant(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	interviews, err := h.interviewService.ListForApplicant(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"interviews": interviews})
}

func (h *InterviewHandler) GetByApplication(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	view, err := h.interviewService.GetByApplication(h.GetDB(c), userID, c.Param("applicationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{
		"applicationId":   view.ApplicationID,
		"interview":       view.Interview,
		"interviewStatus": view.InterviewStatus,
		"job":             view.Job,
	})
}
