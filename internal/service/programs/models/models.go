package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Request модели

// SlotRequest слот программы
type SlotRequest struct {
	Time    string `json:"time" validate:"required,slottime"` // "09:00"
	Enabled bool   `json:"enabled"`
}

// CreateProgramRequest запрос на создание программы
type CreateProgramRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Category    string  `json:"category" validate:"max=100"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
	Icon        string  `json:"icon" validate:"max=100"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`

	ScheduleType string        `json:"scheduleType" validate:"required,oneof=recurring date_range"`
	Weekdays     []int         `json:"weekdays,omitempty" validate:"omitempty,dive,min=0,max=6"` // 0=воскресенье
	StartDate    *string       `json:"startDate,omitempty" validate:"omitempty,isodate"`          // "2024-06-01"
	EndDate      *string       `json:"endDate,omitempty" validate:"omitempty,isodate"`
	Slots        []SlotRequest `json:"slots" validate:"required,min=1,dive"`

	SessionMinutes   int   `json:"sessionMinutes" validate:"omitempty,min=1,max=480"` // 0 = по умолчанию
	SeatsPerSlot     int   `json:"seatsPerSlot" validate:"required,min=1,max=1000"`
	HorizonDays      int   `json:"horizonDays" validate:"omitempty,oneof=7 14 30 180"` // 0 = по умолчанию
	MaxPerUser       *int  `json:"maxPerUser,omitempty" validate:"omitempty,min=1"`
	MaxPerUserPerDay *int  `json:"maxPerUserPerDay,omitempty" validate:"omitempty,min=1"`
	Active           *bool `json:"active,omitempty"` // по умолчанию true
}

// UpdateProgramRequest запрос на частичное обновление программы
// Все поля опциональны - обновляются только переданные значения
// Лимиты: 0 снимает ограничение. ImageURL: пустая строка удаляет изображение
type UpdateProgramRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=100"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`

	ScheduleType *string       `json:"scheduleType,omitempty" validate:"omitempty,oneof=recurring date_range"`
	Weekdays     []int         `json:"weekdays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	StartDate    *string       `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate      *string       `json:"endDate,omitempty" validate:"omitempty,isodate"`
	Slots        []SlotRequest `json:"slots,omitempty" validate:"omitempty,min=1,dive"`

	SessionMinutes   *int  `json:"sessionMinutes,omitempty" validate:"omitempty,min=1,max=480"`
	SeatsPerSlot     *int  `json:"seatsPerSlot,omitempty" validate:"omitempty,min=1,max=1000"`
	HorizonDays      *int  `json:"horizonDays,omitempty" validate:"omitempty,oneof=7 14 30 180"`
	MaxPerUser       *int  `json:"maxPerUser,omitempty" validate:"omitempty,min=0"`
	MaxPerUserPerDay *int  `json:"maxPerUserPerDay,omitempty" validate:"omitempty,min=0"`
	Active           *bool `json:"active,omitempty"`
}

// ToDomainProgram конвертирует CreateProgramRequest в domain модель
// Незаданные длительность и горизонт заменяются значениями по умолчанию
func (r *CreateProgramRequest) ToDomainProgram(tenantID uuid.UUID) (*domain.Program, error) {
	program := &domain.Program{
		TenantID:         tenantID,
		Name:             r.Name,
		Description:      r.Description,
		Category:         r.Category,
		Color:            r.Color,
		Icon:             r.Icon,
		ImageURL:         r.ImageURL,
		ScheduleType:     domain.ScheduleType(r.ScheduleType),
		Weekdays:         r.Weekdays,
		Slots:            toDomainSlots(r.Slots),
		SessionMinutes:   r.SessionMinutes,
		SeatsPerSlot:     r.SeatsPerSlot,
		HorizonDays:      r.HorizonDays,
		MaxPerUser:       r.MaxPerUser,
		MaxPerUserPerDay: r.MaxPerUserPerDay,
		Active:           true,
	}

	if program.SessionMinutes == 0 {
		program.SessionMinutes = domain.DefaultSessionMinutes
	}
	if program.HorizonDays == 0 {
		program.HorizonDays = domain.DefaultHorizonDays
	}
	if r.Active != nil {
		program.Active = *r.Active
	}

	var err error
	if program.StartDate, err = parseDate(r.StartDate); err != nil {
		return nil, err
	}
	if program.EndDate, err = parseDate(r.EndDate); err != nil {
		return nil, err
	}

	return program, nil
}

// ApplyToProgram применяет обновления к существующей программе
// Обновляются только непустые (not nil) поля из request
func (r *UpdateProgramRequest) ApplyToProgram(program *domain.Program) error {
	if r.Name != nil {
		program.Name = *r.Name
	}
	if r.Description != nil {
		program.Description = *r.Description
	}
	if r.Category != nil {
		program.Category = *r.Category
	}
	if r.Color != nil {
		program.Color = *r.Color
	}
	if r.Icon != nil {
		program.Icon = *r.Icon
	}
	if r.ImageURL != nil {
		if *r.ImageURL == "" {
			program.ImageURL = nil
		} else {
			program.ImageURL = ptr.Ptr(*r.ImageURL)
		}
	}
	if r.ScheduleType != nil {
		program.ScheduleType = domain.ScheduleType(*r.ScheduleType)
	}
	if r.Weekdays != nil {
		program.Weekdays = r.Weekdays
	}
	if r.StartDate != nil {
		date, err := parseDate(r.StartDate)
		if err != nil {
			return err
		}
		program.StartDate = date
	}
	if r.EndDate != nil {
		date, err := parseDate(r.EndDate)
		if err != nil {
			return err
		}
		program.EndDate = date
	}
	if r.Slots != nil {
		program.Slots = toDomainSlots(r.Slots)
	}
	if r.SessionMinutes != nil {
		program.SessionMinutes = *r.SessionMinutes
	}
	if r.SeatsPerSlot != nil {
		program.SeatsPerSlot = *r.SeatsPerSlot
	}
	if r.HorizonDays != nil {
		program.HorizonDays = *r.HorizonDays
	}
	if r.MaxPerUser != nil {
		program.MaxPerUser = capOrNil(*r.MaxPerUser)
	}
	if r.MaxPerUserPerDay != nil {
		program.MaxPerUserPerDay = capOrNil(*r.MaxPerUserPerDay)
	}
	if r.Active != nil {
		program.Active = *r.Active
	}
	return nil
}

// Response модели

// SlotResponse слот программы
type SlotResponse struct {
	Time    string `json:"time"`
	Enabled bool   `json:"enabled"`
}

// ProgramResponse ответ с данными программы
type ProgramResponse struct {
	ID               uuid.UUID      `json:"id"`
	TenantID         uuid.UUID      `json:"companyId"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Color            string         `json:"color"`
	Icon             string         `json:"icon"`
	ImageURL         *string        `json:"imageUrl,omitempty"`
	ScheduleType     string         `json:"scheduleType"`
	Weekdays         []int          `json:"weekdays"`
	StartDate        *string        `json:"startDate,omitempty"`
	EndDate          *string        `json:"endDate,omitempty"`
	Slots            []SlotResponse `json:"slots"`
	SessionMinutes   int            `json:"sessionMinutes"`
	SeatsPerSlot     int            `json:"seatsPerSlot"`
	HorizonDays      int            `json:"horizonDays"`
	MaxPerUser       *int           `json:"maxPerUser,omitempty"`
	MaxPerUserPerDay *int           `json:"maxPerUserPerDay,omitempty"`
	Active           bool           `json:"active"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// ProgramListResponse ответ со списком программ
type ProgramListResponse struct {
	Programs []ProgramResponse `json:"programs"`
}

// Методы конвертации

// FromDomainProgram конвертирует domain модель в DTO
func FromDomainProgram(p *domain.Program) *ProgramResponse {
	if p == nil {
		return nil
	}

	resp := &ProgramResponse{
		ID:               p.ID,
		TenantID:         p.TenantID,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Color:            p.Color,
		Icon:             p.Icon,
		ImageURL:         p.ImageURL,
		ScheduleType:     string(p.ScheduleType),
		Weekdays:         p.Weekdays,
		Slots:            make([]SlotResponse, 0, len(p.Slots)),
		SessionMinutes:   p.SessionMinutes,
		SeatsPerSlot:     p.SeatsPerSlot,
		HorizonDays:      p.HorizonDays,
		MaxPerUser:       p.MaxPerUser,
		MaxPerUserPerDay: p.MaxPerUserPerDay,
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	if resp.Weekdays == nil {
		resp.Weekdays = []int{}
	}
	if p.StartDate != nil {
		resp.StartDate = ptr.Ptr(p.StartDate.Format(domain.DateFormat))
	}
	if p.EndDate != nil {
		resp.EndDate = ptr.Ptr(p.EndDate.Format(domain.DateFormat))
	}
	for _, slot := range p.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{Time: slot.Time.String(), Enabled: slot.Enabled})
	}

	return resp
}

// FromDomainProgramList конвертирует список domain моделей в DTO
func FromDomainProgramList(programs []*domain.Program) *ProgramListResponse {
	resp := &ProgramListResponse{
		Programs: make([]ProgramResponse, 0, len(programs)),
	}

	for _, program := range programs {
		if programResp := FromDomainProgram(program); programResp != nil {
			resp.Programs = append(resp.Programs, *programResp)
		}
	}

	return resp
}

func toDomainSlots(slots []SlotRequest) []domain.Slot {
	result := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		result = append(result, domain.Slot{Time: types.TimeString(s.Time), Enabled: s.Enabled})
	}
	return result
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *s, err)
	}
	return ptr.Ptr(date), nil
}

func capOrNil(n int) *int {
	if n <= 0 {
		return nil
	}
	return ptr.Ptr(n)
}
