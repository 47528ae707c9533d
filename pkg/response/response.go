package response

// Response is the error envelope returned by every failing endpoint.
// Successful calls return the bare resource.
type Response struct {
	Status     string            `json:"status"`      // "error"
	StatusCode int               `json:"status_code"` // HTTP status code
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, message string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Message:    message,
	}
}

// Invalid returns a validation error response with per-field messages
func Invalid(statusCode int, fields map[string]string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Message:    "Validation failed",
		Errors:     fields,
	}
}

// Page wraps one page of a paginated listing
type Page struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// Paginate builds a Page, computing the page count from total and limit
func Paginate(data interface{}, page, limit int, total int64) Page {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page{Data: data, Page: page, Limit: limit, Total: total, TotalPages: pages}
}
