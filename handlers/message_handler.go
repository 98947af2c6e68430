package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
	"github.com/ayesh156/card-marking-system/whatsapp"
)

type MessageHandler struct {
	WA *whatsapp.Client
}

func NewMessageHandler(cfg *config.Config) *MessageHandler {
	return &MessageHandler{WA: whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)}
}

type broadcastPayload struct {
	Message string `json:"message" validate:"required"`
}

// Broadcast handles POST /send-whatsapp-messages: one template message per
// unique guardian number across all active enrollments.
func (h *MessageHandler) Broadcast(c echo.Context) error {
	var p broadcastPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var enrollments []models.StudentTuition
	if err := database.DB.Preload("Student").
		Where("status = ?", true).
		Find(&enrollments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	if len(enrollments) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "No active students found."})
	}

	numbers := uniqueNumbers(enrollments)
	responses := h.WA.Broadcast(numbers, p.Message)

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Messages sent successfully.",
		"responses": responses,
	})
}

type tuitionMessagePayload struct {
	Message   string `json:"message" validate:"required"`
	TuitionID uint   `json:"tuition_id" validate:"required"`
}

// ToTuition handles POST /send-message-to-tuition: the broadcast scoped to
// one tuition's active enrollments.
func (h *MessageHandler) ToTuition(c echo.Context) error {
	var p tuitionMessagePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}
	if err := database.DB.First(&models.Tuition{}, p.TuitionID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Tuition not found."})
	}

	var enrollments []models.StudentTuition
	if err := database.DB.Preload("Student").
		Where("tuition_id = ? AND status = ?", p.TuitionID, true).
		Find(&enrollments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	if len(enrollments) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "No active students found for this tuition."})
	}

	numbers := uniqueNumbers(enrollments)
	responses := h.WA.Broadcast(numbers, p.Message)

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Messages sent successfully.",
		"responses": responses,
	})
}

// uniqueNumbers collects the distinct non-empty guardian WhatsApp numbers of
// the enrolled students, in first-seen order.
func uniqueNumbers(enrollments []models.StudentTuition) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, en := range enrollments {
		if en.Student == nil || en.Student.GWhatsapp == nil {
			continue
		}
		n := *en.Student.GWhatsapp
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
