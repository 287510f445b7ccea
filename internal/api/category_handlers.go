package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the category table in lookup order; Others is the fallback",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)
}

// CategoryResponse contains one category of the table.
type CategoryResponse struct {
	Name       string   `json:"name" doc:"Category folder name"`
	Extensions []string `json:"extensions" doc:"Lowercase extensions with leading dot"`
}

// ListCategoriesOutput wraps the category list for Huma.
type ListCategoriesOutput struct {
	Body struct {
		Categories      []CategoryResponse `json:"categories" doc:"Categories in order"`
		CollisionPolicy string             `json:"collision_policy" doc:"What happens when the destination already holds the file name" enum:"skip,rename,overwrite"`
	}
}

func (s *Server) handleListCategories(_ context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	out := &ListCategoriesOutput{}
	out.Body.CollisionPolicy = string(s.organizer.CollisionPolicy())
	for _, c := range s.organizer.Categories() {
		exts := c.Extensions
		if exts == nil {
			exts = []string{}
		}
		out.Body.Categories = append(out.Body.Categories, CategoryResponse{Name: c.Name, Extensions: exts})
	}
	return out, nil
}
