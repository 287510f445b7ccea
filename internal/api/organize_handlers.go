package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/autosort/internal/domain"
	domainerrors "github.com/listenupapp/autosort/internal/errors"
)

func (s *Server) registerOrganizeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "organizeFolder",
		Method:      http.MethodPost,
		Path:        "/api/v1/organize",
		Summary:     "Organize folder",
		Description: "Sorts the files directly inside a folder once. Limited per folder.",
		Tags:        []string{"Organize"},
	}, s.handleOrganize)
}

// OrganizeRequest is the request body for a manual organize run.
type OrganizeRequest struct {
	Folder string `json:"folder" minLength:"1" doc:"Absolute path of the folder to organize"`
}

// OrganizeInput wraps the organize request for Huma.
type OrganizeInput struct {
	Body OrganizeRequest
}

// MoveResponse describes one moved file.
type MoveResponse struct {
	Timestamp   time.Time `json:"timestamp" doc:"When the file was moved"`
	Filename    string    `json:"filename" doc:"Original file name"`
	Destination string    `json:"destination" doc:"Category or rule destination"`
	RunID       string    `json:"run_id,omitempty" doc:"Run that moved the file"`
	Folder      string    `json:"folder,omitempty" doc:"Organized folder"`
	FinalPath   string    `json:"final_path,omitempty" doc:"Where the file ended up"`
}

// RunResponse describes the outcome of an organize run.
type RunResponse struct {
	RunID      string         `json:"run_id" doc:"Run ID"`
	Folder     string         `json:"folder" doc:"Organized folder"`
	StartedAt  time.Time      `json:"started_at" doc:"Run start"`
	FinishedAt time.Time      `json:"finished_at" doc:"Run end"`
	Moves      []MoveResponse `json:"moves" doc:"Files moved by this run"`
	Conflicts  int            `json:"conflicts" doc:"Files left in place because the destination was taken"`
	Failures   int            `json:"failures" doc:"Files whose move failed"`
	Skipped    int            `json:"skipped" doc:"Ignored or vanished files"`
	Error      *RunError      `json:"error,omitempty" doc:"Set when the run moved files but did not finish cleanly"`
}

// RunError reports a failure that happened after files were already moved,
// such as the move log being unwritable.
type RunError struct {
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
}

// RunOutput wraps a run response for Huma.
type RunOutput struct {
	Body RunResponse
}

func (s *Server) handleOrganize(ctx context.Context, input *OrganizeInput) (*RunOutput, error) {
	res, err := s.organizer.Organize(ctx, input.Body.Folder, domain.TriggerAPI)
	if res == nil {
		return nil, err
	}

	// Files already moved; report them with the error instead of failing the request.
	body := toRunResponse(res)
	if err != nil {
		s.logger.Warn("organize finished with error", "folder", res.Folder, "run_id", res.RunID, "error", err)
		body.Error = &RunError{
			Code:    string(domainerrors.CodeOf(err)),
			Message: err.Error(),
		}
	}
	return &RunOutput{Body: body}, nil
}
