package api

import (
	"strconv"
	"time"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/monitor"
	"github.com/listenupapp/autosort/internal/organizer"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// timePtr returns nil for the zero time so it is omitted from JSON.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toRuleResponse(index int, r domain.Rule) RuleResponse {
	return RuleResponse{Index: index, Keyword: r.Keyword, Destination: r.Destination}
}

func toMoveResponse(e domain.LogEntry) MoveResponse {
	return MoveResponse{
		Timestamp:   e.Timestamp,
		Filename:    e.Filename,
		Destination: e.Destination,
		RunID:       e.RunID,
		Folder:      e.Folder,
		FinalPath:   e.FinalPath,
	}
}

func toRunResponse(res *organizer.Result) RunResponse {
	moves := make([]MoveResponse, 0, len(res.Entries))
	for _, e := range res.Entries {
		moves = append(moves, toMoveResponse(e))
	}
	return RunResponse{
		RunID:      res.RunID,
		Folder:     res.Folder,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Moves:      moves,
		Conflicts:  res.Conflicts,
		Failures:   res.Failures,
		Skipped:    res.Skipped,
	}
}

func toWatchResponse(st monitor.Status) WatchResponse {
	resp := WatchResponse{
		Folder:       st.Folder,
		State:        st.State.String(),
		StartedAt:    timePtr(st.StartedAt),
		Sweeps:       st.Sweeps,
		FailedSweeps: st.FailedSweeps,
		Moved:        st.Moved,
		LastRunID:    st.LastRunID,
		LastRunAt:    timePtr(st.LastRunAt),
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	return resp
}
