package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/autosort/internal/domain"
)

func (s *Server) registerRuleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List rules",
		Description: "Returns keyword rules in match order",
		Tags:        []string{"Rules"},
	}, s.handleListRules)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRule",
		Method:        http.MethodPost,
		Path:          "/api/v1/rules",
		Summary:       "Add rule",
		Description:   "Appends a keyword rule; it is saved to the rules file",
		Tags:          []string{"Rules"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRule)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRule",
		Method:      http.MethodDelete,
		Path:        "/api/v1/rules/{index}",
		Summary:     "Remove rule",
		Description: "Removes the rule at the given zero-based position",
		Tags:        []string{"Rules"},
	}, s.handleDeleteRule)
}

// === DTOs ===

// RuleResponse contains a rule and its position.
type RuleResponse struct {
	Index       int    `json:"index" doc:"Zero-based position; earlier rules win"`
	Keyword     string `json:"keyword" doc:"Case-insensitive substring matched against file names"`
	Destination string `json:"destination" doc:"Relative folder the matching files go to"`
}

// ListRulesOutput wraps the rule list for Huma.
type ListRulesOutput struct {
	Body struct {
		Rules []RuleResponse `json:"rules" doc:"Rules in match order"`
	}
}

// CreateRuleRequest is the request body for adding a rule.
type CreateRuleRequest struct {
	Keyword     string `json:"keyword" minLength:"1" maxLength:"255" doc:"Keyword to match"`
	Destination string `json:"destination" minLength:"1" maxLength:"255" doc:"Relative destination folder"`
}

// CreateRuleInput wraps the create rule request for Huma.
type CreateRuleInput struct {
	Body CreateRuleRequest
}

// RuleOutput wraps a single rule for Huma.
type RuleOutput struct {
	Body RuleResponse
}

// DeleteRuleInput contains parameters for removing a rule.
type DeleteRuleInput struct {
	Index int `path:"index" minimum:"0" doc:"Zero-based rule position"`
}

// === Handlers ===

func (s *Server) handleListRules(_ context.Context, _ *struct{}) (*ListRulesOutput, error) {
	out := &ListRulesOutput{}
	out.Body.Rules = []RuleResponse{}
	for i, r := range s.organizer.Rules() {
		out.Body.Rules = append(out.Body.Rules, toRuleResponse(i, r))
	}
	return out, nil
}

func (s *Server) handleCreateRule(_ context.Context, input *CreateRuleInput) (*RuleOutput, error) {
	added, err := s.organizer.AddRule(domain.Rule{
		Keyword:     input.Body.Keyword,
		Destination: input.Body.Destination,
	})
	if err != nil {
		return nil, err
	}
	return &RuleOutput{Body: toRuleResponse(len(s.organizer.Rules())-1, added)}, nil
}

func (s *Server) handleDeleteRule(_ context.Context, input *DeleteRuleInput) (*RuleOutput, error) {
	removed, err := s.organizer.RemoveRule(input.Index)
	if err != nil {
		return nil, err
	}
	return &RuleOutput{Body: toRuleResponse(input.Index, removed)}, nil
}
