package entity

import (
	"time"

	"gorm.io/datatypes"
)

// DigestRun records the funnel of one digest cycle for observability:
// how many candidates were considered, survived each stage, and were
// actually delivered. SourceCounts holds the per-source distribution of the
// balanced candidate set as JSON.
type DigestRun struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Candidates      int            `json:"candidates"`
	AfterSimilarity int            `json:"after_similarity"`
	AfterBalancing  int            `json:"after_balancing"`
	Ranked          int            `json:"ranked"`
	PassedThreshold int            `json:"passed_threshold"`
	Delivered       int            `json:"delivered"`
	ScoreP75        float64        `json:"score_p75"`
	ScoreP90        float64        `json:"score_p90"`
	SourceCounts    datatypes.JSON `json:"source_counts"`
	StartedAt       time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt     time.Time      `json:"completed_at"`
}

// TableName specifies the table name for the DigestRun model.
func (DigestRun) TableName() string {
	return "digest_runs"
}
