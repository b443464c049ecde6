package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/comisiones-api/internal/application/dto"
	"github.com/jhoicas/comisiones-api/internal/application/validation"
	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

// ProviderUseCase consultas de prestadores y asignación del código SCI Único.
type ProviderUseCase struct {
	repo     repository.ProviderRepository
	validate *validation.Validator
	now      func() time.Time
}

// NewProviderUseCase construye el caso de uso.
func NewProviderUseCase(repo repository.ProviderRepository, validate *validation.Validator) *ProviderUseCase {
	return &ProviderUseCase{repo: repo, validate: validate, now: time.Now}
}

// GetByID obtiene un prestador por ID.
func (uc *ProviderUseCase) GetByID(ctx context.Context, id string) (*dto.ProviderResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProviderResponse(p), nil
}

// AssignERPCode registra el código que SCI Único asignó al prestador y lo deja activo.
// Un código ya usado por otro prestador devuelve domain.ErrDuplicate.
func (uc *ProviderUseCase) AssignERPCode(ctx context.Context, id string, in dto.AssignERPCodeRequest) (*dto.ProviderResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := uc.repo.AssignERPCode(ctx, id, in.SciUnico, uc.now()); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

func toProviderResponse(p *entity.Provider) *dto.ProviderResponse {
	return &dto.ProviderResponse{
		ID:         p.ID,
		SID:        p.SID,
		SciUnico:   p.SciUnico,
		Name:       p.Name,
		Kind:       p.Kind(),
		Document:   p.Document,
		Email:      p.Email,
		Status:     p.Status,
		ExportedAt: p.ExportedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
