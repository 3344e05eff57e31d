package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/middleware"
	"github.com/temcen/giftengine/internal/services"
	"github.com/temcen/giftengine/pkg/models"
)

type GiftEngineHandler struct {
	engine services.GiftEngineInterface
	logger *logrus.Logger
}

func NewGiftEngineHandler(engine services.GiftEngineInterface, logger *logrus.Logger) *GiftEngineHandler {
	return &GiftEngineHandler{
		engine: engine,
		logger: logger,
	}
}

// Handle serves POST /api/v1/gift-engine. The body's mode selects the flow;
// nothing downstream runs until the mode is known.
func (h *GiftEngineHandler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: "Failed to read request body",
		})
		return
	}

	input, err := models.DecodeGiftEngineInput(body)
	if err != nil {
		if errors.Is(err, models.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid mode",
				Message: "mode must be \"profile\" or \"search\"",
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	session := middleware.GetSession(c)
	result, err := h.engine.Dispatch(c.Request.Context(), session, input)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"mode":       input.Mode(),
			"request_id": session.RequestID,
		}).Error("Gift engine request failed")
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}
