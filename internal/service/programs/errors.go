package programs

import "errors"

var (
	// ErrProgramNotFound возвращается, когда программа не найдена
	ErrProgramNotFound = errors.New("programs.service: program not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("programs.service: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("programs.service: invalid input data")

	// ErrStorageUnavailable возвращается при ошибке обращения к хранилищу
	ErrStorageUnavailable = errors.New("programs.service: storage unavailable")
)
