package metrics

import (
	"time"
)

// DBTimer замеряет длительность одного SQL запроса.
// Используется в репозиториях: defer metrics.NewDBTimer(...).ObserveDuration()
type DBTimer struct {
	service   string
	operation string
	table     string
	start     time.Time
}

func NewDBTimer(service, operation, table string) *DBTimer {
	return &DBTimer{
		service:   service,
		operation: operation,
		table:     table,
		start:     time.Now(),
	}
}

func (t *DBTimer) ObserveDuration() {
	duration := time.Since(t.start).Seconds()
	DbQueryDuration.WithLabelValues(t.service, t.operation, t.table).Observe(duration)
}

func RecordDBError(service, operation string) {
	DbErrors.WithLabelValues(service, operation).Inc()
}
