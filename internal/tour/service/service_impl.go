package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/pricing"
	tourdomain "github.com/gowander/waypost/internal/tour/domain"
	"github.com/gowander/waypost/pkg/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  tourdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  tourdomain.Repository
}

func New(p Params) tourdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tour.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateSupplier(ctx context.Context, req tourdomain.CreateSupplierRequest) (*tourdomain.SupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, tourdomain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, tourdomain.ErrInvalidEmail
	}

	now := s.clock.Now().UTC()
	entity := &tourdomain.Supplier{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertSupplier(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return &tourdomain.SupplierResponse{
		ID:        entity.ID.String(),
		Name:      entity.Name,
		Email:     entity.Email,
		CreatedAt: entity.CreatedAt,
	}, nil
}

func (s *Service) CreateTour(ctx context.Context, req tourdomain.CreateTourRequest) (*tourdomain.TourResponse, error) {
	supplierID, err := parseID(req.SupplierID)
	if err != nil {
		return nil, tourdomain.ErrInvalidSupplier
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, tourdomain.ErrInvalidTitle
	}

	supplier, err := s.repo.FindSupplierByID(ctx, s.db, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, tourdomain.ErrSupplierNotFound
	}

	tourSlug := slug.Make(title)
	existing, err := s.repo.FindTourBySlug(ctx, s.db, tourSlug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, tourdomain.ErrSlugTaken
	}

	now := s.clock.Now().UTC()
	entity := &tourdomain.Tour{
		ID:           s.genID.Generate(),
		SupplierID:   supplierID,
		Slug:         tourSlug,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Location:     strings.TrimSpace(req.Location),
		MaxGroupSize: req.MaxGroupSize,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertTour(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return s.toTourResponse(entity, nil), nil
}

func (s *Service) CreateOption(ctx context.Context, tourID string, req tourdomain.CreateOptionRequest) (*tourdomain.OptionResponse, error) {
	id, err := parseID(tourID)
	if err != nil {
		return nil, tourdomain.ErrInvalidID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, tourdomain.ErrInvalidName
	}
	if req.BasePrice < 0 {
		return nil, tourdomain.ErrInvalidBasePrice
	}

	tour, err := s.repo.FindTourByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, tourdomain.ErrTourNotFound
	}

	tiers := make([]pricing.Tier, 0, len(req.Tiers))
	for _, t := range req.Tiers {
		tiers = append(tiers, pricing.Tier{
			MinPeople: t.MinPeople,
			MaxPeople: t.MaxPeople,
			Price:     t.Price,
		})
	}
	if err := pricing.ValidateTiers(tiers); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := s.clock.Now().UTC()
	option := &tourdomain.TourOption{
		ID:        s.genID.Generate(),
		TourID:    id,
		Name:      name,
		Currency:  currency,
		BasePrice: req.BasePrice,
		IsDefault: req.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tierRows := make([]tourdomain.OptionPriceTier, 0, len(req.Tiers))
	for i, t := range req.Tiers {
		tierRows = append(tierRows, tourdomain.OptionPriceTier{
			ID:        s.genID.Generate(),
			OptionID:  option.ID,
			Position:  i,
			MinPeople: t.MinPeople,
			MaxPeople: t.MaxPeople,
			Price:     t.Price,
			CreatedAt: now,
		})
	}

	if err := s.repo.InsertOption(ctx, s.db, option, tierRows); err != nil {
		return nil, err
	}

	return s.toOptionResponse(option, tierRows), nil
}

func (s *Service) GetTour(ctx context.Context, id string) (*tourdomain.TourResponse, error) {
	tourID, err := parseID(id)
	if err != nil {
		return nil, tourdomain.ErrInvalidID
	}

	tour, err := s.repo.FindTourByID(ctx, s.db, tourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, tourdomain.ErrTourNotFound
	}

	options, err := s.repo.ListOptionsByTour(ctx, s.db, tourID)
	if err != nil {
		return nil, err
	}

	resp := make([]tourdomain.OptionResponse, 0, len(options))
	for i := range options {
		tiers, err := s.repo.ListTiersByOption(ctx, s.db, options[i].ID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *s.toOptionResponse(&options[i], tiers))
	}

	return s.toTourResponse(tour, resp), nil
}

func (s *Service) ListTours(ctx context.Context, pageToken string, pageSize int) (*tourdomain.TourListResponse, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var afterID snowflake.ID
	if strings.TrimSpace(pageToken) != "" {
		cursor, err := pagination.DecodeCursor(pageToken)
		if err != nil {
			return nil, tourdomain.ErrInvalidID
		}
		afterID, err = parseID(cursor.ID)
		if err != nil {
			return nil, tourdomain.ErrInvalidID
		}
	}

	tours, err := s.repo.ListTours(ctx, s.db, afterID, pageSize+1)
	if err != nil {
		return nil, err
	}

	items := make([]*tourdomain.Tour, 0, len(tours))
	for i := range tours {
		items = append(items, &tours[i])
	}
	pageInfo, items := pagination.BuildCursorPageInfo(items, pageSize, func(t *tourdomain.Tour) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: t.ID.String()})
		return token
	})

	resp := &tourdomain.TourListResponse{
		Tours:   make([]tourdomain.TourResponse, 0, len(items)),
		HasMore: pageInfo.HasMore,
	}
	if pageInfo.HasMore {
		resp.NextPageToken = pageInfo.NextPageToken
	}
	for _, t := range items {
		resp.Tours = append(resp.Tours, *s.toTourResponse(t, nil))
	}

	return resp, nil
}

func (s *Service) toTourResponse(t *tourdomain.Tour, options []tourdomain.OptionResponse) *tourdomain.TourResponse {
	return &tourdomain.TourResponse{
		ID:           t.ID.String(),
		SupplierID:   t.SupplierID.String(),
		Slug:         t.Slug,
		Title:        t.Title,
		Description:  t.Description,
		Location:     t.Location,
		MaxGroupSize: t.MaxGroupSize,
		IsActive:     t.IsActive,
		Options:      options,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (s *Service) toOptionResponse(o *tourdomain.TourOption, tiers []tourdomain.OptionPriceTier) *tourdomain.OptionResponse {
	tierResp := make([]tourdomain.PriceTierResponse, 0, len(tiers))
	for _, t := range tiers {
		tierResp = append(tierResp, tourdomain.PriceTierResponse{
			MinPeople: t.MinPeople,
			MaxPeople: t.MaxPeople,
			Price:     t.Price,
		})
	}
	return &tourdomain.OptionResponse{
		ID:        o.ID.String(),
		TourID:    o.TourID.String(),
		Name:      o.Name,
		Currency:  o.Currency,
		BasePrice: o.BasePrice,
		IsDefault: o.IsDefault,
		Tiers:     tierResp,
		CreatedAt: o.CreatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
