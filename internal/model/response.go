package model

// APIResponse is the envelope wrapping every coupon endpoint response.
// StatusCode is the declared status and may differ from the transport status
// (create declares 201 and delete declares 204 while both answer 200).
type APIResponse struct {
	IsSuccess     bool     `json:"isSuccess"`
	StatusCode    int      `json:"statusCode"`
	Result        any      `json:"result"`
	ErrorMessages []string `json:"errorMessages"`
}

// NewSuccessResponse builds a successful envelope.
func NewSuccessResponse(statusCode int, result any) *APIResponse {
	return &APIResponse{
		IsSuccess:     true,
		StatusCode:    statusCode,
		Result:        result,
		ErrorMessages: []string{},
	}
}

// NewErrorResponse builds a failed envelope carrying the given messages.
func NewErrorResponse(statusCode int, messages ...string) *APIResponse {
	if messages == nil {
		messages = []string{}
	}
	return &APIResponse{
		IsSuccess:     false,
		StatusCode:    statusCode,
		ErrorMessages: messages,
	}
}
