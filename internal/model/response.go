package model

// SearchResponse is the envelope for the vehicle search endpoint. An empty
// Results slice with a 200 status is a valid outcome, distinct from an error.
type SearchResponse struct {
	Results []VehicleRecord `json:"results"`
	Meta    *ResponseMeta   `json:"meta,omitempty"`
}

// ResponseMeta carries result-count and timing information.
type ResponseMeta struct {
	Count  int     `json:"count"`
	TookMs float64 `json:"took_ms"`
}

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}
