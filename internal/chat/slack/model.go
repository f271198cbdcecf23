package slack

import "fmt"

type response struct {
	OK bool `json:"ok"`

	Error string `json:"error,omitempty"`
}

// APIError is a Slack "ok": false reply.
type APIError struct {
	Method string

	Code string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

type uploadURLResponse struct {
	response

	UploadURL string `json:"upload_url"`

	FileId string `json:"file_id"`
}

type completeFile struct {
	Id string `json:"id"`

	Title string `json:"title,omitempty"`
}

type uploadedFile struct {
	Id string `json:"id"`

	URLPrivate string `json:"url_private"`
}

type completeUploadResponse struct {
	response

	Files []uploadedFile `json:"files"`
}

type postMessageRequest struct {
	Channel string `json:"channel"`

	Text string `json:"text"`

	Blocks []Block `json:"blocks,omitempty"`
}

type postMessageResponse struct {
	response

	Channel string `json:"channel"`

	Ts string `json:"ts"`
}

type Block struct {
	Type string `json:"type"`

	Text *TextObject `json:"text,omitempty"`

	SlackFile *SlackFile `json:"slack_file,omitempty"`

	AltText string `json:"alt_text,omitempty"`

	Title *TextObject `json:"title,omitempty"`
}

type TextObject struct {
	Type string `json:"type"`

	Text string `json:"text"`
}

type SlackFile struct {
	URL string `json:"url"`
}

// messageBlocks renders the text section followed by the uploaded image.
func messageBlocks(text, displayRef, title string) []Block {
	return []Block{
		{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: text},
		},
		{
			Type:      "image",
			SlackFile: &SlackFile{URL: displayRef},
			AltText:   title,
			Title:     &TextObject{Type: "plain_text", Text: title},
		},
	}
}
