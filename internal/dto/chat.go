package dto

type CreateConversationRequest struct {
	Participants []string `json:"participants" validate:"required,len=2,dive,required"`
}

type SendMessageRequest struct {
	Text string                 `json:"text" validate:"max=5000"`
	Type string                 `json:"type" validate:"omitempty,is-message-kind"`
	Meta map[string]interface{} `json:"meta"`
}
