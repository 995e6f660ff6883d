package program

import "errors"

var (
	// ErrProgramNotFound возвращается, когда программа не найдена
	ErrProgramNotFound = errors.New("program.repository: program not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("program.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("program.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("program.repository: failed to scan row")

	// ErrEncodeSlots возвращается при ошибке сериализации слотов в JSONB
	ErrEncodeSlots = errors.New("program.repository: failed to encode slots")
)
