package programs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	programRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/program"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/programs/models"
)

// Service сервис каталога программ
type Service struct {
	programRepo ProgramRepository
	txManager   TransactionManager
	validate    *validator.Validate
	logger      Logger
}

// NewService создает новый экземпляр сервиса программ
func NewService(
	programRepo ProgramRepository,
	txManager TransactionManager,
	validate *validator.Validate,
	logger Logger,
) *Service {
	return &Service{
		programRepo: programRepo,
		txManager:   txManager,
		validate:    validate,
		logger:      logger,
	}
}

// List получает программы компании
// includeInactive доступен только администраторам; остальные видят активные программы
func (s *Service) List(ctx context.Context, actor domain.Actor, includeInactive bool) (*models.ProgramListResponse, error) {
	s.logger.Info("List: fetching programs for tenant=%s, includeInactive=%t", actor.TenantID, includeInactive)

	if includeInactive && !actor.IsAdmin() {
		s.logger.Warn("List: user=%s is not an admin of tenant=%s", actor.UserID, actor.TenantID)
		return nil, ErrAccessDenied
	}

	programs, err := s.programRepo.ListByTenant(ctx, actor.TenantID, !includeInactive)
	if err != nil {
		s.logger.Error("List: repository error for tenant=%s: %v", actor.TenantID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("List: successfully fetched %d programs for tenant=%s", len(programs), actor.TenantID)
	return models.FromDomainProgramList(programs), nil
}

// GetByID получает программу компании
// Неактивная программа видна только администраторам
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.ProgramResponse, error) {
	s.logger.Info("GetByID: fetching program id=%s for tenant=%s", id, actor.TenantID)

	program, err := s.programRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		if errors.Is(err, programRepo.ErrProgramNotFound) {
			s.logger.Warn("GetByID: program id=%s not found", id)
			return nil, ErrProgramNotFound
		}
		s.logger.Error("GetByID: repository error for program id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrStorageUnavailable, err)
	}

	if !program.Active && !actor.IsAdmin() {
		s.logger.Warn("GetByID: program id=%s is inactive", id)
		return nil, ErrProgramNotFound
	}

	return models.FromDomainProgram(program), nil
}

// Create создает программу
// Доступно только администраторам компании
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateProgramRequest) (*models.ProgramResponse, error) {
	s.logger.Info("Create: creating program %q for tenant=%s by user=%s", req.Name, actor.TenantID, actor.UserID)

	if !actor.IsAdmin() {
		s.logger.Warn("Create: user=%s is not an admin of tenant=%s", actor.UserID, actor.TenantID)
		return nil, ErrAccessDenied
	}

	// 1. Валидируем запрос
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Собираем программу и проверяем её инварианты
	program, err := req.ToDomainProgram(actor.TenantID)
	if err != nil {
		s.logger.Warn("Create: invalid program data: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := program.Validate(); err != nil {
		s.logger.Warn("Create: program validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Сохраняем
	created, err := s.programRepo.Create(ctx, program)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("Create: successfully created program id=%s", created.ID)
	return models.FromDomainProgram(created), nil
}

// Update частично обновляет программу
// Доступно только администраторам компании. Чтение и запись выполняются в одной транзакции
// под блокировкой строки программы, поэтому параллельный допуск видит либо старую, либо новую версию
func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *models.UpdateProgramRequest) (*models.ProgramResponse, error) {
	s.logger.Info("Update: updating program id=%s by user=%s", id, actor.UserID)

	if !actor.IsAdmin() {
		s.logger.Warn("Update: user=%s is not an admin of tenant=%s", actor.UserID, actor.TenantID)
		return nil, ErrAccessDenied
	}

	// 1. Валидируем запрос
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result *domain.Program

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2. Получаем существующую программу
		program, err := s.programRepo.GetByID(txCtx, actor.TenantID, id)
		if err != nil {
			if errors.Is(err, programRepo.ErrProgramNotFound) {
				s.logger.Warn("Update: program id=%s not found", id)
				return ErrProgramNotFound
			}
			s.logger.Error("Update: repository error for program id=%s: %v", id, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrStorageUnavailable, err)
		}

		// 3. Применяем обновления и проверяем результат целиком
		if err := req.ApplyToProgram(program); err != nil {
			s.logger.Warn("Update: invalid program data: %v", err)
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		if err := program.Validate(); err != nil {
			s.logger.Warn("Update: validation failed for program id=%s: %v", id, err)
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		// 4. Сохраняем
		updated, err := s.programRepo.Update(txCtx, program)
		if err != nil {
			if errors.Is(err, programRepo.ErrProgramNotFound) {
				s.logger.Warn("Update: program id=%s not found during update", id)
				return ErrProgramNotFound
			}
			s.logger.Error("Update: repository error for program id=%s: %v", id, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrStorageUnavailable, err)
		}

		result = updated
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrProgramNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrStorageUnavailable) {
			return nil, err
		}
		s.logger.Error("Update: transaction failed for program id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Update - transaction failed: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("Update: successfully updated program id=%s", id)
	return models.FromDomainProgram(result), nil
}

// Delete удаляет программу вместе с её бронированиями
// Доступно только администраторам компании
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	s.logger.Info("Delete: deleting program id=%s by user=%s", id, actor.UserID)

	if !actor.IsAdmin() {
		s.logger.Warn("Delete: user=%s is not an admin of tenant=%s", actor.UserID, actor.TenantID)
		return ErrAccessDenied
	}

	if err := s.programRepo.Delete(ctx, actor.TenantID, id); err != nil {
		if errors.Is(err, programRepo.ErrProgramNotFound) {
			s.logger.Warn("Delete: program id=%s not found", id)
			return ErrProgramNotFound
		}
		s.logger.Error("Delete: repository error for program id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("Delete: successfully deleted program id=%s", id)
	return nil
}
