package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/usecase"
)

type MedicationHandler struct {
	meds   *usecase.MedicationUsecase
	logger *slog.Logger
}

func NewMedicationHandler(meds *usecase.MedicationUsecase, logger *slog.Logger) *MedicationHandler {
	return &MedicationHandler{meds: meds, logger: logger.With("component", "medication_handler")}
}

type medicationRequest struct {
	Name           string   `json:"name"             binding:"required,max=200"`
	Dosage         string   `json:"dosage"           binding:"required,max=100"`
	Form           string   `json:"form"             binding:"omitempty,max=50"`
	Times          []string `json:"times"            binding:"required,min=1,max=12,dive,datetime=15:04"`
	Color          string   `json:"color"            binding:"omitempty,max=30"`
	Icon           string   `json:"icon"             binding:"omitempty,max=30"`
	StartDate      string   `json:"start_date"       binding:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"end_date"         binding:"omitempty,datetime=2006-01-02"`
	Reminders      bool     `json:"reminders"`
	RefillReminder bool     `json:"refill_reminder"`
	RefillDaysLeft int      `json:"refill_days_left" binding:"omitempty,min=0,max=365"`
	Notes          string   `json:"notes"            binding:"omitempty,max=1000"`
}

func (r *medicationRequest) toInput(userID string) usecase.MedicationInput {
	input := usecase.MedicationInput{
		UserID:         userID,
		Name:           r.Name,
		Dosage:         r.Dosage,
		Form:           r.Form,
		Times:          r.Times,
		Color:          r.Color,
		Icon:           r.Icon,
		Reminders:      r.Reminders,
		RefillReminder: r.RefillReminder,
		RefillDaysLeft: r.RefillDaysLeft,
		Notes:          r.Notes,
	}
	if r.StartDate != "" {
		input.StartDate, _ = time.Parse("2006-01-02", r.StartDate)
	}
	if r.EndDate != "" {
		end, _ := time.Parse("2006-01-02", r.EndDate)
		input.EndDate = &end
	}
	return input
}

type medicationResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Dosage         string     `json:"dosage"`
	Form           string     `json:"form,omitempty"`
	Times          []string   `json:"times"`
	Color          string     `json:"color,omitempty"`
	Icon           string     `json:"icon,omitempty"`
	StartDate      string     `json:"start_date"`
	EndDate        *string    `json:"end_date,omitempty"`
	Reminders      bool       `json:"reminders"`
	RefillReminder bool       `json:"refill_reminder"`
	RefillDaysLeft int        `json:"refill_days_left"`
	Notes          string     `json:"notes,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toMedicationResponse(m *domain.Medication) medicationResponse {
	resp := medicationResponse{
		ID:             m.ID,
		Name:           m.Name,
		Dosage:         m.Dosage,
		Form:           m.Form,
		Times:          m.Times,
		Color:          m.Color,
		Icon:           m.Icon,
		StartDate:      m.StartDate.Format("2006-01-02"),
		Reminders:      m.Reminders,
		RefillReminder: m.RefillReminder,
		RefillDaysLeft: m.RefillDaysLeft,
		Notes:          m.Notes,
		CompletedAt:    m.CompletedAt,
		CreatedAt:      m.CreatedAt,
	}
	if m.EndDate != nil {
		end := m.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}

// POST /medications
func (h *MedicationHandler) Create(c *gin.Context) {
	var req medicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	med, err := h.meds.Create(c.Request.Context(), req.toInput(c.GetString("userID")))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "create medication", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toMedicationResponse(med))
}

// GET /medications
func (h *MedicationHandler) List(c *gin.Context) {
	meds, err := h.meds.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list medications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]medicationResponse, len(meds))
	for i, m := range meds {
		items[i] = toMedicationResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"medications": items})
}

// PUT /medications/:id
func (h *MedicationHandler) Update(c *gin.Context) {
	var req medicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	med, err := h.meds.Update(c.Request.Context(), c.Param("id"), req.toInput(c.GetString("userID")))
	if err != nil {
		if errors.Is(err, domain.ErrMedicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errMedicationNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "update medication", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toMedicationResponse(med))
}

// DELETE /medications/:id
func (h *MedicationHandler) Delete(c *gin.Context) {
	err := h.meds.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrMedicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errMedicationNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "delete medication", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}

type doseViewResponse struct {
	MedicationID string            `json:"medication_id"`
	Name         string            `json:"name"`
	Dosage       string            `json:"dosage"`
	Time         string            `json:"time"`
	Status       domain.DoseStatus `json:"status"`
	Color        string            `json:"color,omitempty"`
	Icon         string            `json:"icon,omitempty"`
	TakenAt      *time.Time        `json:"taken_at,omitempty"`
}

// GET /medications/today
func (h *MedicationHandler) Today(c *gin.Context) {
	views, err := h.meds.Today(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "today's medications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]doseViewResponse, len(views))
	for i, v := range views {
		items[i] = doseViewResponse{
			MedicationID: v.MedicationID,
			Name:         v.Name,
			Dosage:       v.Dosage,
			Time:         v.Time,
			Status:       v.Status,
			Color:        v.Color,
			Icon:         v.Icon,
			TakenAt:      v.TakenAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"medications": items})
}

type markTakenRequest struct {
	Time string `json:"time" binding:"required,datetime=15:04"`
}

// POST /medications/:id/taken
func (h *MedicationHandler) MarkTaken(c *gin.Context) {
	var req markTakenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.meds.MarkTaken(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Time)
	if err != nil {
		if errors.Is(err, domain.ErrMedicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errMedicationNotFound})
			return
		}
		if errors.Is(err, domain.ErrInvalidDoseTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDoseTime})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "mark dose taken", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type doseLogResponse struct {
	ID            string            `json:"id"`
	MedicationID  string            `json:"medication_id"`
	Date          string            `json:"date"`
	ScheduledTime string            `json:"scheduled_time"`
	Status        domain.DoseStatus `json:"status"`
	TakenAt       *time.Time        `json:"taken_at,omitempty"`
}

// GET /medications/history?from=2006-01-02&to=2006-01-02
func (h *MedicationHandler) History(c *gin.Context) {
	var from, to time.Time
	if s := c.Query("from"); s != "" {
		var err error
		if from, err = time.Parse("2006-01-02", s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
	}
	if s := c.Query("to"); s != "" {
		var err error
		if to, err = time.Parse("2006-01-02", s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
	}

	logs, err := h.meds.History(c.Request.Context(), c.GetString("userID"), from, to)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "dose history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]doseLogResponse, len(logs))
	for i, l := range logs {
		items[i] = doseLogResponse{
			ID:            l.ID,
			MedicationID:  l.MedicationID,
			Date:          l.Date.Format("2006-01-02"),
			ScheduledTime: l.ScheduledTime,
			Status:        l.Status,
			TakenAt:       l.TakenAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"history": items})
}
