package model

import "github.com/haojie06/canvas-relay/internal/chat"

type GenerationRequest struct {
	Prompt string `json:"prompt"`
}

type GenerationResponse struct {
	Success bool `json:"success"`

	S3URL string `json:"s3Url"`

	Prompt string `json:"prompt"`
}

type PostRequest struct {
	Message string `json:"message"`

	S3URL string `json:"s3Url,omitempty"` // optional locator of a stored image
}

type PostResponse struct {
	Result bool `json:"result"`

	Response *chat.Ack `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`

	Detail string `json:"detail,omitempty"`
}
