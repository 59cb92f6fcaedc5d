package dto

// ActionResponse is the envelope every endpoint returns.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) ActionResponse {
	return ActionResponse{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope.
func Fail(code, message string) ActionResponse {
	return ActionResponse{Success: false, Message: message, Code: code}
}
