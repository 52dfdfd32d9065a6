package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	"github.com/aquabill/aquabill/internal/clock"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  clientdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  clientdomain.Repository
	genID *snowflake.Node
}

func New(p Params) clientdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		clock: p.Clock,
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req clientdomain.CreateRequest) (*clientdomain.Response, error) {
	companyID, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, clientdomain.ErrInvalidName
	}

	now := s.clock.Now()
	c := &clientdomain.Client{
		ID:             s.genID.Generate(),
		CompanyID:      companyID,
		Name:           name,
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		return nil, err
	}

	return s.toResponse(c), nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]clientdomain.Response, error) {
	id, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	resp := make([]clientdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, companyID, id string) (*clientdomain.Response, error) {
	cid, err := s.parseCompanyID(companyID)
	if err != nil {
		return nil, err
	}

	clientID, err := clientdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, clientdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, clientID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, clientdomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) Update(ctx context.Context, req clientdomain.UpdateRequest) (*clientdomain.Response, error) {
	cid, err := s.parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}

	clientID, err := clientdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, clientdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, cid, clientID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, clientdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, clientdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.DocumentNumber != nil {
		item.DocumentNumber = strings.TrimSpace(*req.DocumentNumber)
	}
	if req.Email != nil {
		item.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		item.Address = strings.TrimSpace(*req.Address)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	return s.toResponse(item), nil
}

func (s *Service) parseCompanyID(value string) (snowflake.ID, error) {
	id, err := clientdomain.ParseID(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, clientdomain.ErrInvalidCompany
	}
	return id, nil
}

func (s *Service) toResponse(c *clientdomain.Client) *clientdomain.Response {
	return &clientdomain.Response{
		ID:             c.ID.String(),
		CompanyID:      c.CompanyID.String(),
		Name:           c.Name,
		DocumentNumber: c.DocumentNumber,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
