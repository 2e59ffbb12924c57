package parsers

import (
	"fmt"
	"strconv"
	"strings"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
)

// MatchRow is one match read from a sheet. Err is set when the row could not
// be read; other rows are unaffected.
type MatchRow struct {
	Line      int
	MatchType string
	Category  string
	Team1     []uuid.UUID
	Team2     []uuid.UUID
	Sets      []ratingdomain.SetScore
	PlayedAt  string
	Err       error
}

type columns struct {
	matchType, category, playedAt int
	team1, team2                  []int
	sets                          []int
}

var (
	matchTypeNames = []string{"match_type", "type", "format"}
	categoryNames  = []string{"category", "level", "match_level"}
	playedAtNames  = []string{"played_at", "date", "played"}
	team1Names     = [][]string{{"team1_player1", "t1p1", "team1"}, {"team1_player2", "t1p2"}}
	team2Names     = [][]string{{"team2_player1", "t2p1", "team2"}, {"team2_player2", "t2p2"}}
	setNames       = [][]string{{"set1", "s1"}, {"set2", "s2"}, {"set3", "s3"}}
)

// findColumn searches for a column by multiple possible names (case-insensitive).
// Spaces, underscores and hyphens are ignored.
func findColumn(header []string, possibleNames []string) int {
	for i, col := range header {
		colNorm := normalizeHeader(col)
		for _, name := range possibleNames {
			if colNorm == normalizeHeader(name) {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func mapColumns(header []string) (columns, error) {
	c := columns{
		matchType: findColumn(header, matchTypeNames),
		category:  findColumn(header, categoryNames),
		playedAt:  findColumn(header, playedAtNames),
	}
	if c.category < 0 {
		return c, fmt.Errorf("header has no category column")
	}
	for _, names := range team1Names {
		if i := findColumn(header, names); i >= 0 {
			c.team1 = append(c.team1, i)
		}
	}
	for _, names := range team2Names {
		if i := findColumn(header, names); i >= 0 {
			c.team2 = append(c.team2, i)
		}
	}
	if len(c.team1) == 0 || len(c.team2) == 0 {
		return c, fmt.Errorf("header needs player columns for both teams")
	}
	for _, names := range setNames {
		if i := findColumn(header, names); i >= 0 {
			c.sets = append(c.sets, i)
		}
	}
	if len(c.sets) == 0 {
		return c, fmt.Errorf("header has no set columns")
	}
	return c, nil
}

// parseRecords maps a header plus data records to rows. line is the 1-based
// sheet line of the header.
func parseRecords(records [][]string, headerLine int) ([]MatchRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	cols, err := mapColumns(records[0])
	if err != nil {
		return nil, err
	}

	var out []MatchRow
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		out = append(out, parseRow(rec, cols, headerLine+i+1))
	}
	return out, nil
}

func parseRow(rec []string, cols columns, line int) MatchRow {
	row := MatchRow{
		Line:      line,
		MatchType: cell(rec, cols.matchType),
		Category:  cell(rec, cols.category),
		PlayedAt:  cell(rec, cols.playedAt),
	}

	var err error
	if row.Team1, err = playerIDs(rec, cols.team1); err != nil {
		row.Err = fmt.Errorf("team 1: %w", err)
		return row
	}
	if row.Team2, err = playerIDs(rec, cols.team2); err != nil {
		row.Err = fmt.Errorf("team 2: %w", err)
		return row
	}
	if row.MatchType == "" {
		row.MatchType = string(ratingdomain.MatchTypeSingles)
		if len(row.Team1) == 2 {
			row.MatchType = string(ratingdomain.MatchTypeDoubles)
		}
	}

	for n, idx := range cols.sets {
		raw := cell(rec, idx)
		if raw == "" {
			continue
		}
		s, err := ParseSet(raw)
		if err != nil {
			row.Err = fmt.Errorf("set %d: %w", n+1, err)
			return row
		}
		row.Sets = append(row.Sets, s)
	}
	return row
}

// ParseSet reads "6-4". A super-tiebreak is written "[10-8]" or "10-8 stb".
func ParseSet(raw string) (ratingdomain.SetScore, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	var set ratingdomain.SetScore

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		set.SuperTiebreak = true
	} else if strings.HasSuffix(s, "stb") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "stb"))
		set.SuperTiebreak = true
	}

	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return set, fmt.Errorf("%q is not a set score", raw)
	}
	var err error
	if set.Team1, err = strconv.Atoi(strings.TrimSpace(a)); err != nil {
		return set, fmt.Errorf("%q is not a set score", raw)
	}
	if set.Team2, err = strconv.Atoi(strings.TrimSpace(b)); err != nil {
		return set, fmt.Errorf("%q is not a set score", raw)
	}
	return set, nil
}

func playerIDs(rec []string, idxs []int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, idx := range idxs {
		raw := cell(rec, idx)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid player id %q", raw)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no players")
	}
	return ids, nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
