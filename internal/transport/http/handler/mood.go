package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediremind/api/internal/domain"
	"github.com/mediremind/api/internal/usecase"
)

type MoodHandler struct {
	moods  *usecase.MoodUsecase
	logger *slog.Logger
}

func NewMoodHandler(moods *usecase.MoodUsecase, logger *slog.Logger) *MoodHandler {
	return &MoodHandler{moods: moods, logger: logger.With("component", "mood_handler")}
}

type logMoodRequest struct {
	Mood string `json:"mood" binding:"required,oneof=happy neutral sad"`
	Note string `json:"note" binding:"omitempty,max=500"`
}

// POST /mood
func (h *MoodHandler) Log(c *gin.Context) {
	var req logMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.moods.Log(c.Request.Context(), c.GetString("userID"), domain.Mood(req.Mood), req.Note)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "log mood", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mood": entry.Mood,
		"note": entry.Note,
		"date": entry.Date.Format("2006-01-02"),
	})
}

// GET /mood/today
// Returns null fields when no mood was logged today.
func (h *MoodHandler) Today(c *gin.Context) {
	entry, err := h.moods.Today(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "today's mood", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"mood": nil, "note": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mood": entry.Mood, "note": entry.Note})
}
