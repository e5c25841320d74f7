package storage

import (
	"context"
	"errors"
	"time"
)

// Round is one finished round as persisted.
// Exactly one of UserID and AnonymousID is set.
type Round struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId,omitempty"`
	AnonymousID string    `json:"-"`
	Caught      int       `json:"caught"`
	Lost        int       `json:"lost"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// RecordRound inserts a finished round. Rounds where nothing was caught
// or lost are skipped.
func (s *Store) RecordRound(ctx context.Context, r Round) error {
	if r.Caught == 0 && r.Lost == 0 {
		return nil
	}
	if (r.UserID == "") == (r.AnonymousID == "") {
		return errors.New("round needs exactly one owner")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO rounds (session_id, user_id, anonymous_id, caught, lost, started_at, finished_at)
        VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?)`,
		r.SessionID, r.UserID, r.AnonymousID, r.Caught, r.Lost,
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
	)
	return err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Player     string    `json:"player"` // username, or "guest"
	Caught     int       `json:"caught"`
	Lost       int       `json:"lost"`
	FinishedAt time.Time `json:"finishedAt"`
}

// MaxLimit caps the row count of list queries.
const MaxLimit = 100

// clampLimit maps non-positive limits to def and caps the rest at MaxLimit.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxLimit)
}

// Leaderboard returns the best rounds: most caught, then fewest lost,
// then earliest finish. Default limit is 20, at most MaxLimit.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	limit = clampLimit(limit, 20)
	rows, err := s.db.QueryContext(ctx, `
        SELECT COALESCE(u.username, 'guest'), r.caught, r.lost, r.finished_at
        FROM rounds r
        LEFT JOIN users u ON u.id = r.user_id
        ORDER BY r.caught DESC, r.lost ASC, r.finished_at ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		var finished string
		if err := rows.Scan(&r.Player, &r.Caught, &r.Lost, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats aggregates a player's rounds.
type Stats struct {
	RoundsPlayed int `json:"roundsPlayed"`
	TotalCaught  int `json:"totalCaught"`
	TotalLost    int `json:"totalLost"`
	BestCaught   int `json:"bestCaught"`
}

// UserStats aggregates every round owned by userID.
func (s *Store) UserStats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1), COALESCE(SUM(caught), 0), COALESCE(SUM(lost), 0), COALESCE(MAX(caught), 0)
        FROM rounds WHERE user_id=?`, userID,
	).Scan(&st.RoundsPlayed, &st.TotalCaught, &st.TotalLost, &st.BestCaught)
	return st, err
}

// RecentRounds lists a user's latest rounds, newest first (at most MaxLimit).
func (s *Store) RecentRounds(ctx context.Context, userID string, limit int) ([]Round, error) {
	limit = clampLimit(limit, 50)
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, caught, lost, started_at, finished_at
        FROM rounds WHERE user_id=?
        ORDER BY finished_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		r := Round{UserID: userID}
		var started, finished string
		if err := rows.Scan(&r.SessionID, &r.Caught, &r.Lost, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt, r.FinishedAt = parseTime(started), parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonRounds transfers a guest's rounds to an account after auth.
func (s *Store) ClaimAnonRounds(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE rounds SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// tsLayout is fixed-width so stored timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(tsLayout) }

// parseTime parses stored timestamps; on error returns zero time.
func parseTime(v string) time.Time {
	t, _ := time.Parse(tsLayout, v)
	return t
}
