package handler

// errorResponse is the error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Pagination holds the paging parameters shared by list endpoints.
type Pagination struct {
	Page int `query:"page" validate:"omitempty,gte=1"`
	Size int `query:"size" validate:"omitempty,gte=1"`
}

// listMeta is embedded in every paginated list envelope.
type listMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}
