package get_available_dates

import "errors"

var (
	// ErrProgramNotFound возвращается, когда программа не найдена, неактивна или принадлежит другой компании
	ErrProgramNotFound = errors.New("get_available_dates: program not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_dates: invalid input data")

	// ErrStorageUnavailable возвращается при ошибке обращения к хранилищу
	ErrStorageUnavailable = errors.New("get_available_dates: storage unavailable")
)
