package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aquabill/aquabill/internal/clock"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	"github.com/aquabill/aquabill/internal/tariff"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  companydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  companydomain.Repository
	genID *snowflake.Node
}

func New(p Params) companydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		clock: p.Clock,
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req companydomain.CreateRequest) (*companydomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, companydomain.ErrInvalidName
	}

	cfg := tariff.Config{
		MinimumCharge:      req.MinimumCharge,
		MinimumCubicMeters: req.MinimumCubicMeters,
		PricePerCubicMeter: req.PricePerCubicMeter,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &companydomain.Company{
		ID:                 s.genID.Generate(),
		Name:               name,
		TaxID:              strings.TrimSpace(req.TaxID),
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		Address:            strings.TrimSpace(req.Address),
		City:               strings.TrimSpace(req.City),
		Province:           strings.TrimSpace(req.Province),
		MinimumCharge:      req.MinimumCharge,
		MinimumCubicMeters: req.MinimumCubicMeters,
		PricePerCubicMeter: req.PricePerCubicMeter,
		AcceptCash:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		return nil, err
	}

	s.log.Info("company created", zap.String("company_id", c.ID.String()))
	return s.toResponse(c), nil
}

func (s *Service) List(ctx context.Context) ([]companydomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]companydomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*companydomain.Response, error) {
	companyID, err := companydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, companydomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, companydomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) Update(ctx context.Context, req companydomain.UpdateRequest) (*companydomain.Response, error) {
	companyID, err := companydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, companydomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, companydomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, companydomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.TaxID != nil {
		item.TaxID = strings.TrimSpace(*req.TaxID)
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
	if req.City != nil {
		item.City = strings.TrimSpace(*req.City)
	}
	if req.Province != nil {
		item.Province = strings.TrimSpace(*req.Province)
	}

	if req.AcceptCash != nil {
		item.AcceptCash = *req.AcceptCash
	}
	if req.AcceptCard != nil {
		item.AcceptCard = *req.AcceptCard
	}
	if req.AcceptBankTransfer != nil {
		item.AcceptBankTransfer = *req.AcceptBankTransfer
	}
	if req.AcceptEmola != nil {
		item.AcceptEmola = *req.AcceptEmola
	}
	if req.AcceptMpesa != nil {
		item.AcceptMpesa = *req.AcceptMpesa
	}

	if req.BankName != nil {
		item.BankName = strings.TrimSpace(*req.BankName)
	}
	if req.BankAccount != nil {
		item.BankAccount = strings.TrimSpace(*req.BankAccount)
	}
	if req.BankCode != nil {
		item.BankCode = strings.TrimSpace(*req.BankCode)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	return s.toResponse(item), nil
}

func (s *Service) UpdateTariff(ctx context.Context, req companydomain.UpdateTariffRequest) (*companydomain.Response, error) {
	companyID, err := companydomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, companydomain.ErrInvalidID
	}

	cfg := tariff.Config{
		MinimumCharge:      req.MinimumCharge,
		MinimumCubicMeters: req.MinimumCubicMeters,
		PricePerCubicMeter: req.PricePerCubicMeter,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, companydomain.ErrNotFound
	}

	item.MinimumCharge = req.MinimumCharge
	item.MinimumCubicMeters = req.MinimumCubicMeters
	item.PricePerCubicMeter = req.PricePerCubicMeter
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("tariff updated",
		zap.String("company_id", item.ID.String()),
		zap.String("minimum_charge", item.MinimumCharge.String()),
		zap.Int64("minimum_cubic_meters", item.MinimumCubicMeters),
		zap.String("price_per_cubic_meter", item.PricePerCubicMeter.String()),
	)
	return s.toResponse(item), nil
}

func (s *Service) GetTariff(ctx context.Context, id snowflake.ID) (tariff.Config, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return tariff.Config{}, err
	}
	if item == nil {
		return tariff.Config{}, companydomain.ErrNotFound
	}
	if !item.TariffConfigured() {
		return tariff.Config{}, companydomain.ErrTariffNotConfigured
	}
	return item.Tariff(), nil
}

func (s *Service) toResponse(c *companydomain.Company) *companydomain.Response {
	return &companydomain.Response{
		ID:                 c.ID.String(),
		Name:               c.Name,
		TaxID:              c.TaxID,
		Email:              c.Email,
		Phone:              c.Phone,
		Address:            c.Address,
		City:               c.City,
		Province:           c.Province,
		MinimumCharge:      c.MinimumCharge,
		MinimumCubicMeters: c.MinimumCubicMeters,
		PricePerCubicMeter: c.PricePerCubicMeter,
		AcceptCash:         c.AcceptCash,
		AcceptCard:         c.AcceptCard,
		AcceptBankTransfer: c.AcceptBankTransfer,
		AcceptEmola:        c.AcceptEmola,
		AcceptMpesa:        c.AcceptMpesa,
		BankName:           c.BankName,
		BankAccount:        c.BankAccount,
		BankCode:           c.BankCode,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
