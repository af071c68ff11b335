package server

import (
	"github.com/CasualConversation/casualbotler/config"
	"github.com/CasualConversation/casualbotler/modaction"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	correlator *modaction.Correlator
	store      RecordStore
	cfg        *config.Config
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		correlator: deps.Correlator,
		store:      deps.Store,
		cfg:        deps.Config,
	}
}
