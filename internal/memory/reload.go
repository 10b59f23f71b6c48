package memory

import (
	"context"
	"errors"

	"mcp-recall/internal/journal"
)

// ReloadReport summarizes one reconciliation run.
type ReloadReport struct {
	RecordsLoaded int `json:"records_loaded"`
	FilesFailed   int `json:"files_failed"`
	AddFailures   int `json:"add_failures"`
}

// ErrVectorUnavailable rejects reconciliation while the vector backend is
// degraded or disabled; replaying into nothing would only report failures.
var ErrVectorUnavailable = errors.New("vector backend unavailable")

// ReloadFromJournal replays every journal record into the vector index.
// Records with generated IDs re-add under the same key, so re-running is
// safe for them; records predating IDs use the legacy session+timestamp
// key and can duplicate. Parse failures are counted, not fatal.
func (s *Service) ReloadFromJournal(ctx context.Context) (ReloadReport, error) {
	var report ReloadReport
	if !s.vectorUsable() {
		return report, ErrVectorUnavailable
	}

	err := s.journal.WalkUsers(ctx, func(result journal.WalkResult) error {
		if result.Err != nil {
			report.FilesFailed++
			s.logger.Warn("skipping unparseable session file",
				"user", result.UserID, "session", result.SessionID, "error", result.Err)
			return nil
		}
		for i := range result.Records {
			rec := result.Records[i]
			err := s.index.Add(ctx,
				[]string{rec.VectorKey()},
				[]string{rec.Document()},
				[]map[string]interface{}{rec.Metadata()},
			)
			if err != nil {
				report.AddFailures++
				continue
			}
			report.RecordsLoaded++
		}
		return ctx.Err()
	})
	if err != nil {
		return report, err
	}

	s.logger.Info("journal reload finished",
		"records", report.RecordsLoaded, "failed_files", report.FilesFailed, "add_failures", report.AddFailures)
	return report, nil
}
