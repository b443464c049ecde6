package dto

// WebhookResponse respuesta al ERP. El ping se responde con {"message":"pong"}.
type WebhookResponse struct {
	Message string `json:"message"`
}
