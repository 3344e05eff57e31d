package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/middleware"
	"github.com/temcen/giftengine/internal/repository"
	"github.com/temcen/giftengine/internal/services"
	"github.com/temcen/giftengine/pkg/models"
)

// PeopleHandler serves the person-based flows. Both routes sit behind Auth.
type PeopleHandler struct {
	engine services.GiftEngineInterface
	logger *logrus.Logger
}

func NewPeopleHandler(engine services.GiftEngineInterface, logger *logrus.Logger) *PeopleHandler {
	return &PeopleHandler{
		engine: engine,
		logger: logger,
	}
}

// GenerateGiftIdeas serves POST /api/v1/people/:personId/gift-ideas.
func (h *PeopleHandler) GenerateGiftIdeas(c *gin.Context) {
	personID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	result, err := h.engine.GenerateForPerson(c.Request.Context(), middleware.GetSession(c), personID, userID)
	if err != nil {
		h.writeError(c, err, personID)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PreviewInput serves GET /api/v1/people/:personId/gift-engine-input.
func (h *PeopleHandler) PreviewInput(c *gin.Context) {
	personID, userID, ok := h.identify(c)
	if !ok {
		return
	}

	preview, err := h.engine.PreviewInput(c.Request.Context(), personID, userID)
	if err != nil {
		h.writeError(c, err, personID)
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *PeopleHandler) identify(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	personID, err := uuid.Parse(c.Param("personId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: "Invalid person ID format",
		})
		return uuid.Nil, uuid.Nil, false
	}

	return personID, userID, true
}

func (h *PeopleHandler) writeError(c *gin.Context, err error, personID uuid.UUID) {
	switch {
	case errors.Is(err, repository.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNoQuestionnaire):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Questionnaire required",
			Message: "Complete the questionnaire for this person before generating gift ideas",
		})
	case errors.Is(err, services.ErrPeopleUnavailable):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Service unavailable",
			Message: err.Error(),
		})
	default:
		h.logger.WithError(err).WithField("person_id", personID).Error("Person gift flow failed")
		internalError(c, err)
	}
}
