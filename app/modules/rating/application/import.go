package ratingservice

import (
	"context"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/google/uuid"
)

// ImportMatches reads a CSV or XLSX match sheet and submits each row as a
// pending match. A bad row is reported and the rest still go through. Each
// match is submitted on behalf of the first player of team 1, so the usual
// confirmations are still required before anything is rated.
func (s *RatingService) ImportMatches(ctx context.Context, filename string, data []byte, importerID uuid.UUID) (*ImportReport, error) {
	parser, err := s.parsers.GetParser(filename)
	if err != nil {
		return nil, ratingdomain.NewValidationError("%v", err)
	}
	rows, err := parser.Parse(data)
	if err != nil {
		return nil, ratingdomain.NewValidationError("%v", err)
	}

	s.logger.InfoContext(ctx, "Importing match sheet",
		attr.ExtractCorrelationID(ctx),
		attr.String("filename", filename),
		attr.UUID("importer_id", importerID),
		attr.Int("rows", len(rows)),
	)

	report := &ImportReport{Rows: make([]ImportRowResult, 0, len(rows))}
	for _, row := range rows {
		res := ImportRowResult{Line: row.Line}
		switch {
		case row.Err != nil:
			res.Error = row.Err.Error()
		case len(row.Team1) == 0:
			res.Error = "team 1 has no players"
		default:
			submitted, err := s.SubmitMatch(ctx, SubmitMatchRequest{
				MatchType:   row.MatchType,
				Category:    row.Category,
				Sets:        row.Sets,
				Team1:       row.Team1,
				Team2:       row.Team2,
				SubmitterID: row.Team1[0],
				PlayedAt:    row.PlayedAt,
			})
			if err != nil {
				res.Error = err.Error()
			} else {
				id := submitted.MatchID
				res.MatchID = &id
			}
		}

		if res.Error != "" {
			report.Failed++
		} else {
			report.Imported++
		}
		report.Rows = append(report.Rows, res)
	}

	s.logger.InfoContext(ctx, "Match sheet imported",
		attr.ExtractCorrelationID(ctx),
		attr.String("filename", filename),
		attr.Int("imported", report.Imported),
		attr.Int("failed", report.Failed),
	)
	return report, nil
}
