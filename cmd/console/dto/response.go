package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"not found"`
}

// MessageResponseDTO는 단순 메시지 응답 형식을 통일하기 위한 DTO이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"ok"`
}

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// HealthResponseDTO 는 /health 응답이다. 블로그 API 가 응답하지 않으면 status 가 degraded 다.
type HealthResponseDTO struct {
	Status  string `json:"status" example:"ok"`
	BlogAPI string `json:"blog_api,omitempty" example:"down"`
	Error   string `json:"error,omitempty"`
}
