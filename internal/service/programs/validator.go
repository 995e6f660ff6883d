package programs

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// NewValidator создает валидатор запросов каталога с дополнительными правилами:
// slottime - строка "HH:MM", isodate - строка "YYYY-MM-DD"
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("slottime", isSlotTime)
	_ = validate.RegisterValidation("isodate", isISODate)
	return validate
}

func isSlotTime(fl validator.FieldLevel) bool {
	return types.TimeString(fl.Field().String()).Validate() == nil
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateFormat, fl.Field().String())
	return err == nil
}
