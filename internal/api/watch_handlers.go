package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerWatchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listWatches",
		Method:      http.MethodGet,
		Path:        "/api/v1/watches",
		Summary:     "List watches",
		Description: "Returns every watch session, including ones that stopped on error",
		Tags:        []string{"Watches"},
	}, s.handleListWatches)

	huma.Register(s.api, huma.Operation{
		OperationID:   "startWatch",
		Method:        http.MethodPost,
		Path:          "/api/v1/watches",
		Summary:       "Start watching",
		Description:   "Starts monitoring a folder; new files are organized automatically",
		Tags:          []string{"Watches"},
		DefaultStatus: http.StatusCreated,
	}, s.handleStartWatch)

	huma.Register(s.api, huma.Operation{
		OperationID: "stopWatch",
		Method:      http.MethodDelete,
		Path:        "/api/v1/watches",
		Summary:     "Stop watching",
		Description: "Stops monitoring a folder",
		Tags:        []string{"Watches"},
	}, s.handleStopWatch)
}

// WatchResponse describes a watch session.
type WatchResponse struct {
	Folder       string     `json:"folder" doc:"Watched folder"`
	State        string     `json:"state" doc:"idle, starting, running, stopping, stopped, or error"`
	StartedAt    *time.Time `json:"started_at,omitempty" doc:"When watching began"`
	Sweeps       int        `json:"sweeps" doc:"Organize runs performed"`
	FailedSweeps int        `json:"failed_sweeps" doc:"Runs that returned an error"`
	Moved        int        `json:"moved" doc:"Files moved by this session"`
	LastRunID    string     `json:"last_run_id,omitempty" doc:"Most recent run"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty" doc:"When the most recent run finished"`
	LastError    string     `json:"last_error,omitempty" doc:"Most recent error"`
}

// ListWatchesOutput wraps the watch list for Huma.
type ListWatchesOutput struct {
	Body struct {
		Watches []WatchResponse `json:"watches" doc:"Watch sessions sorted by folder"`
	}
}

// StartWatchRequest is the request body for starting a watch.
type StartWatchRequest struct {
	Folder string `json:"folder" minLength:"1" doc:"Absolute path of the folder to watch"`
}

// StartWatchInput wraps the start watch request for Huma.
type StartWatchInput struct {
	Body StartWatchRequest
}

// WatchOutput wraps a single watch for Huma.
type WatchOutput struct {
	Body WatchResponse
}

// StopWatchInput contains parameters for stopping a watch.
type StopWatchInput struct {
	Folder string `query:"folder" required:"true" doc:"Watched folder"`
}

func (s *Server) handleListWatches(_ context.Context, _ *struct{}) (*ListWatchesOutput, error) {
	out := &ListWatchesOutput{}
	out.Body.Watches = []WatchResponse{}
	for _, st := range s.organizer.Watches() {
		out.Body.Watches = append(out.Body.Watches, toWatchResponse(st))
	}
	return out, nil
}

func (s *Server) handleStartWatch(ctx context.Context, input *StartWatchInput) (*WatchOutput, error) {
	st, err := s.organizer.StartWatch(ctx, input.Body.Folder)
	if err != nil {
		return nil, err
	}
	return &WatchOutput{Body: toWatchResponse(st)}, nil
}

func (s *Server) handleStopWatch(_ context.Context, input *StopWatchInput) (*struct{}, error) {
	if err := s.organizer.StopWatch(input.Folder); err != nil {
		return nil, err
	}
	return nil, nil
}
