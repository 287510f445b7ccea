package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Move history",
		Description: "Returns moved files, newest first",
		Tags:        []string{"History"},
	}, s.handleListHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRuns",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs",
		Summary:     "Run history",
		Description: "Returns organize run summaries, newest first",
		Tags:        []string{"History"},
	}, s.handleListRuns)
}

// HistoryInput contains filters for history queries.
type HistoryInput struct {
	Folder string `query:"folder" doc:"Only entries for this folder"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"1000" doc:"Maximum number of entries"`
}

// HistoryOutput wraps the move history for Huma.
type HistoryOutput struct {
	Body struct {
		Moves []MoveResponse `json:"moves" doc:"Moves, newest first"`
	}
}

// RunSummaryResponse describes a past run.
type RunSummaryResponse struct {
	ID         string        `json:"id" doc:"Run ID"`
	Folder     string        `json:"folder" doc:"Organized folder"`
	Trigger    string        `json:"trigger" doc:"manual, watch, or api"`
	StartedAt  time.Time     `json:"started_at" doc:"Run start"`
	FinishedAt time.Time     `json:"finished_at" doc:"Run end"`
	Duration   time.Duration `json:"duration_ns" doc:"Run duration in nanoseconds"`
	Moved      int           `json:"moved" doc:"Files moved"`
	Conflicts  int           `json:"conflicts" doc:"Files left in place"`
	Failures   int           `json:"failures" doc:"Failed moves"`
}

// RunsOutput wraps the run history for Huma.
type RunsOutput struct {
	Body struct {
		Runs []RunSummaryResponse `json:"runs" doc:"Runs, newest first"`
	}
}

func (s *Server) handleListHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	entries, err := s.organizer.History(ctx, input.Folder, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &HistoryOutput{}
	out.Body.Moves = make([]MoveResponse, 0, len(entries))
	for _, e := range entries {
		out.Body.Moves = append(out.Body.Moves, toMoveResponse(e))
	}
	return out, nil
}

func (s *Server) handleListRuns(ctx context.Context, input *HistoryInput) (*RunsOutput, error) {
	runs, err := s.organizer.Runs(ctx, input.Folder, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &RunsOutput{}
	out.Body.Runs = make([]RunSummaryResponse, 0, len(runs))
	for _, r := range runs {
		out.Body.Runs = append(out.Body.Runs, RunSummaryResponse{
			ID:         r.ID,
			Folder:     r.Folder,
			Trigger:    string(r.Trigger),
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Duration:   r.Duration(),
			Moved:      r.Moved,
			Conflicts:  r.Conflicts,
			Failures:   r.Failures,
		})
	}
	return out, nil
}
