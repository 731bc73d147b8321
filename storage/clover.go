package storage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ostafen/clover"
	"go.uber.org/zap"

	"github.com/agrosud-co/site-service/types"
)

const leadsCollection = "leads"

type State int32

const (
	StateStopped State = iota
	StateRunning
)

// CloverStore persists submitted leads in an embedded document store.
// One instance per process; the website traffic profile makes a real
// database overkill for a write-mostly lead log.
type CloverStore struct {
	db     *clover.DB
	logger types.Logger
	path   string
	state  atomic.Int32
}

func NewCloverStore(logger types.Logger, path string) (*CloverStore, error) {
	db, err := clover.Open(path)
	if err != nil {
		return nil, types.WrapError(err, "open lead store")
	}

	return &CloverStore{
		db:     db,
		logger: logger,
		path:   path,
	}, nil
}

func (s *CloverStore) Start() error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return types.ErrServerAlreadyRunning
	}

	exists, err := s.db.HasCollection(leadsCollection)
	if err != nil {
		return types.WrapError(err, "check leads collection")
	}
	if !exists {
		if err := s.db.CreateCollection(leadsCollection); err != nil {
			return types.WrapError(err, "create leads collection")
		}
	}

	s.logger.Info("Lead store started", zap.String("path", s.path))
	return nil
}

func (s *CloverStore) Stop() error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return types.ErrServerNotRunning
	}

	if err := s.db.Close(); err != nil {
		return types.WrapError(err, "close lead store")
	}

	s.logger.Info("Lead store stopped gracefully")
	return nil
}

func (s *CloverStore) IsRunning() bool {
	return State(s.state.Load()) == StateRunning
}

func (s *CloverStore) SaveLead(ctx context.Context, lead types.Lead) (string, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	doc := clover.NewDocument()
	doc.Set("id", lead.ID)
	doc.Set("kind", lead.Kind)
	doc.Set("name", lead.Name)
	doc.Set("email", lead.Email)
	doc.Set("company", lead.Company)
	doc.Set("country", lead.Country)
	doc.Set("phone", lead.Phone)
	doc.Set("message", lead.Message)
	doc.Set("product", lead.Product)
	doc.Set("quantity", lead.Quantity)
	doc.Set("locale", lead.Locale)
	doc.Set("client_ip", lead.ClientIP)
	doc.Set("created_at", lead.CreatedAt.UnixNano())

	if err := s.db.Insert(leadsCollection, doc); err != nil {
		return "", types.Errorf(types.ErrLeadStoreFailed, "insert: %v", err)
	}

	return lead.ID, nil
}

func (s *CloverStore) CountLeads(ctx context.Context, kind string) (int64, error) {
	query := s.db.Query(leadsCollection)
	if kind != "" {
		query = query.Where(clover.Field("kind").Eq(kind))
	}

	count, err := query.Count()
	if err != nil {
		return 0, types.Errorf(types.ErrLeadStoreFailed, "count: %v", err)
	}

	return int64(count), nil
}
