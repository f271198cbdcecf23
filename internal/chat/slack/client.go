package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/haojie06/canvas-relay/internal/chat"
)

const DefaultAPIURL = "https://slack.com/api/"

// Client talks to the Slack Web API with a bot token. Every message goes to
// the one configured channel.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	channelId  string
}

func NewClient(token, channelId, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		token:      token,
		channelId:  channelId,
	}
}

var _ chat.Poster = (*Client)(nil)

func (c *Client) PostText(ctx context.Context, text string) (*chat.Ack, error) {
	resp, err := c.postMessage(ctx, postMessageRequest{Channel: c.channelId, Text: text})
	if err != nil {
		return nil, err
	}
	return &chat.Ack{OK: resp.OK, Channel: resp.Channel, Timestamp: resp.Ts}, nil
}

func (c *Client) PostImage(ctx context.Context, text string, file chat.File) (*chat.Ack, error) {
	u := newUpload(c, file)
	return u.run(ctx, text)
}

func (c *Client) getUploadURLExternal(ctx context.Context, fileName string, length int) (*uploadURLResponse, error) {
	form := url.Values{}
	form.Set("filename", fileName)
	form.Set("length", strconv.Itoa(length))
	var resp uploadURLResponse
	if err := c.callForm(ctx, "files.getUploadURLExternal", form, &resp, &resp.response); err != nil {
		return nil, err
	}
	if resp.UploadURL == "" || resp.FileId == "" {
		return nil, fmt.Errorf("slack files.getUploadURLExternal: missing upload_url or file_id")
	}
	return &resp, nil
}

// uploadBytes sends the raw file body to an upload slot.
func (c *Client) uploadBytes(ctx context.Context, uploadURL, contentType string, data []byte) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", contentType)
	request.ContentLength = int64(len(data))
	resp, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) completeUploadExternal(ctx context.Context, fileId, title string) (*uploadedFile, error) {
	files, err := json.Marshal([]completeFile{{Id: fileId, Title: title}})
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("files", string(files))
	var resp completeUploadResponse
	if err := c.callForm(ctx, "files.completeUploadExternal", form, &resp, &resp.response); err != nil {
		return nil, err
	}
	for i := range resp.Files {
		if resp.Files[i].Id == fileId && resp.Files[i].URLPrivate != "" {
			return &resp.Files[i], nil
		}
	}
	return nil, fmt.Errorf("slack files.completeUploadExternal: file %s has no url_private", fileId)
}

func (c *Client) postMessage(ctx context.Context, msg postMessageRequest) (*postMessageResponse, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var resp postMessageResponse
	if err := c.call(ctx, "chat.postMessage", "application/json; charset=utf-8", bytes.NewReader(body), &resp, &resp.response); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) callForm(ctx context.Context, method string, form url.Values, out interface{}, status *response) error {
	return c.call(ctx, method, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), out, status)
}

// call POSTs to a Web API method, decodes into out and turns ok=false into
// an *APIError. status must point into out.
func (c *Client) call(ctx context.Context, method, contentType string, body io.Reader, out interface{}, status *response) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+method, body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack %s: unexpected status code %d", method, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slack %s: decode response: %w", method, err)
	}
	if !status.OK {
		return &APIError{Method: method, Code: status.Error}
	}
	return nil
}
