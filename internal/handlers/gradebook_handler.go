package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GradebookHandler struct {
	BaseHandler
	gradebookService services.GradebookService
}

func NewGradebookHandler(gradebookService services.GradebookService, logger utils.Logger) *GradebookHandler {
	return &GradebookHandler{
		BaseHandler:      NewBaseHandler(logger),
		gradebookService: gradebookService,
	}
}

// GetPolicy returns the active scoring ladder
// @Router /scoring/policy [get]
func (h *GradebookHandler) GetPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, h.gradebookService.Policy())
}

// ListStudents returns every student with derived per-subject views
// @Router /students [get]
func (h *GradebookHandler) ListStudents(c *gin.Context) {
	students, err := h.gradebookService.ListStudents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students, "total": len(students)})
}

// GetStudent returns one student
// @Router /students/{id} [get]
func (h *GradebookHandler) GetStudent(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	student, err := h.gradebookService.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// SubjectBoard lists the students enrolled in a subject
// @Param q query string false "Name or id filter"
// @Router /subjects/{subject}/board [get]
func (h *GradebookHandler) SubjectBoard(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}

	rows, err := h.gradebookService.SubjectBoard(c.Request.Context(), subject, c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "rows": rows, "total": len(rows)})
}

// UpdateScore writes one score cell and resyncs the reward balance
// @Router /subjects/{subject}/students/{id}/scores [put]
func (h *GradebookHandler) UpdateScore(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.ScoreUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}
	req.StudentID = id
	req.Subject = subject

	h.LogRequest(c, "Updating score", "student_id", id, "subject", subject, "field", req.Field)

	view, err := h.gradebookService.UpdateScore(c.Request.Context(), &req, actorOf(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateStatus sets Normal, Retake or NoAssessment
// @Router /subjects/{subject}/students/{id}/status [put]
func (h *GradebookHandler) UpdateStatus(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}
	req.StudentID = id
	req.Subject = subject

	view, err := h.gradebookService.UpdateStatus(c.Request.Context(), &req, actorOf(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// OverrideBalance sets or adjusts the stored reward balance
// @Router /subjects/{subject}/students/{id}/rewards [put]
func (h *GradebookHandler) OverrideBalance(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.BalanceOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}
	req.StudentID = id
	req.Subject = subject

	view, err := h.gradebookService.OverrideBalance(c.Request.Context(), &req, actorOf(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Redeem spends one reward credit. A denial is a 200 with redeemed=false.
// @Router /subjects/{subject}/students/{id}/redeem [post]
func (h *GradebookHandler) Redeem(c *gin.Context) {
	subject, ok := ParseSubjectParam(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Redeeming reward", "student_id", id, "subject", subject)

	view, err := h.gradebookService.Redeem(c.Request.Context(), id, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
