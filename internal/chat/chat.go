// Package chat defines what the posting handler needs from a chat service.
package chat

import "context"

// File is an attachment held fully in memory.
type File struct {
	Name string

	Title string

	ContentType string

	Data []byte
}

// Ack is the normalized acknowledgement returned to callers, upstream
// payloads are never relayed as is.
type Ack struct {
	OK bool `json:"ok"`

	Channel string `json:"channel"`

	Timestamp string `json:"ts"` // message id on providers without timestamps

	FileId string `json:"file_id,omitempty"`
}

type Poster interface {
	// PostText posts text to the destination channel.
	PostText(ctx context.Context, text string) (*Ack, error)

	// PostImage uploads file and posts text referencing it.
	PostImage(ctx context.Context, text string, file File) (*Ack, error)
}
