package api

const taskPayloadMaxSize = 16 * 1024 // 16 KiB

// generic error response body
type errorResponse struct {
	Error string `json:"error"`
}
