package stats

import (
	"context"

	"github.com/verte-zerg/wordtrack/internal/model"
)

// SessionLister is the read side of the listening history.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.ListenSession, error)
}

// History contains precomputed data for history rendering.
type History struct {
	Sessions []model.ListenSession
	// Rates holds the match rate per session, in percent.
	Rates []float64
}

// BuildHistory loads sessions, oldest first, trimmed to the last cfg.Last.
func BuildHistory(ctx context.Context, st SessionLister, cfg model.HistoryConfig) (History, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return History{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	rates := make([]float64, len(sessions))
	for i, s := range sessions {
		rates[i] = MatchRate(s.Matches, s.Tokens) * 100
	}
	return History{Sessions: sessions, Rates: rates}, nil
}
