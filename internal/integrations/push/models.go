package push

// ErrorResponse модель ошибки от push-шлюза
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
