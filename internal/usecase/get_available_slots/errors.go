package get_available_slots

import "errors"

var (
	// ErrProgramNotFound возвращается, когда программа не найдена, неактивна или принадлежит другой компании
	ErrProgramNotFound = errors.New("get_available_slots: program not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrStorageUnavailable возвращается при ошибке обращения к хранилищу
	ErrStorageUnavailable = errors.New("get_available_slots: storage unavailable")
)
