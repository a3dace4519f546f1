package ports

import "github.com/ZhiquAI/aigrading-license-service/internal/domain"

// UsageRecorder accepts audit entries off the consumption hot path.
// Record must not block and must not fail the caller: a full buffer or a
// storage error is logged by the implementation and otherwise swallowed.
type UsageRecorder interface {
	Record(record domain.UsageRecord)
}
