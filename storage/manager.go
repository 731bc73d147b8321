package storage

import (
	"github.com/agrosud-co/site-service/types"
)

func New(logger types.Logger, config *types.LeadsConfig) (types.LeadStore, error) {
	switch config.Store {
	case "clover":
		return NewCloverStore(logger, config.Path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, types.Errorf(types.ErrLeadStoreTypeUnknown, "%s", config.Store)
	}
}
