package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type WorkshopService interface {
	Create(ctx context.Context, title string) (*types.Workshop, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Workshop, error)
}

type workshopService struct {
	log          *logger.Logger
	workshopRepo repos.WorkshopRepo
}

func NewWorkshopService(log *logger.Logger, workshopRepo repos.WorkshopRepo) WorkshopService {
	return &workshopService{
		log:          log.With("service", "WorkshopService"),
		workshopRepo: workshopRepo,
	}
}

func (s *workshopService) Create(ctx context.Context, title string) (*types.Workshop, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Invalid("title must not be empty")
	}
	workshop := &types.Workshop{
		ID:     uuid.New(),
		Title:  title,
		Status: "active",
	}
	if _, err := s.workshopRepo.Create(ctx, nil, workshop); err != nil {
		return nil, apierr.Internal(err)
	}
	return workshop, nil
}

func (s *workshopService) Get(ctx context.Context, id uuid.UUID) (*types.Workshop, error) {
	workshop, err := s.workshopRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if workshop == nil {
		return nil, apierr.NotFound("workshop %s not found", id)
	}
	return workshop, nil
}
