package middleware

import "time"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// HTTPMetrics фиксирует обработанные HTTP запросы
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
}
