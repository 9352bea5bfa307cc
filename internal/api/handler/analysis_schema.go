package handler

import "github.com/fpa-intel/fpa-api/internal/core/domain"

type listAnalysesQuery struct {
	Pagination
	Status    string `query:"status"     validate:"omitempty,oneof=draft in-progress completed failed"`
	Search    string `query:"search"`
	SortBy    string `query:"sort_by"    validate:"omitempty,oneof=created_at name status updated_at"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type createAnalysisRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,min=1,max=1000"`
	Period      string   `json:"period"      validate:"required,min=1,max=50"`
	Competitors []string `json:"competitors"`
	Status      string   `json:"status"      validate:"omitempty,oneof=draft in-progress completed failed"`
}

type updateAnalysisRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=1,max=1000"`
	Period      *string  `json:"period"      validate:"omitempty,min=1,max=50"`
	Competitors []string `json:"competitors"`
	Status      *string  `json:"status"      validate:"omitempty,oneof=draft in-progress completed failed"`
}

type bulkDeleteRequest struct {
	AnalysisIDs []string `json:"analysis_ids" validate:"required,min=1,dive,required"`
}

type analysisListResponse struct {
	Analyses []*domain.Analysis `json:"analyses"`
	listMeta
}

type bulkDeleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

type generateResponse struct {
	Message string                `json:"message"`
	Status  domain.AnalysisStatus `json:"status"`
}
