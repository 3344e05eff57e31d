package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/services"
)

type Handlers struct {
	Health     *HealthHandler
	GiftEngine *GiftEngineHandler
	People     *PeopleHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(logger, services.Health),
		GiftEngine: NewGiftEngineHandler(services.Engine, logger),
		People:     NewPeopleHandler(services.Engine, logger),
	}
}
