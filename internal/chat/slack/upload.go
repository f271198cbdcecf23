package slack

import (
	"context"
	"fmt"

	"github.com/haojie06/canvas-relay/internal/chat"
	"github.com/haojie06/canvas-relay/internal/logger"
)

type UploadState int

const (
	UploadStatePending UploadState = iota
	UploadStateReserved
	UploadStateTransferred
	UploadStateFinalized
	UploadStatePublished
	UploadStateFailed
)

func (s UploadState) String() string {
	switch s {
	case UploadStatePending:
		return "pending"
	case UploadStateReserved:
		return "reserved"
	case UploadStateTransferred:
		return "transferred"
	case UploadStateFinalized:
		return "finalized"
	case UploadStatePublished:
		return "published"
	case UploadStateFailed:
		return "failed"
	}
	return fmt.Sprintf("UploadState(%d)", int(s))
}

// UploadError records the state the pipeline was in when a step failed.
type UploadError struct {
	State UploadState
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed after %s: %v", e.State, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// upload is one reserve -> transfer -> finalize -> publish run. A failed run
// leaves a reserved slot behind, nothing releases it.
type upload struct {
	client *Client
	file   chat.File
	state  UploadState

	uploadURL  string
	fileId     string
	displayRef string

	logger *logger.CustomLogger
}

func newUpload(c *Client, file chat.File) *upload {
	if file.Title == "" {
		file.Title = file.Name
	}
	return &upload{
		client: c,
		file:   file,
		state:  UploadStatePending,
		logger: logger.NewCustomLogger().With("file", file.Name),
	}
}

func (u *upload) fail(err error) error {
	failedAfter := u.state
	u.state = UploadStateFailed
	u.logger.Warnf("slack upload failed after %s: %v", failedAfter, err)
	return &UploadError{State: failedAfter, Err: err}
}

func (u *upload) reserve(ctx context.Context) error {
	resp, err := u.client.getUploadURLExternal(ctx, u.file.Name, len(u.file.Data))
	if err != nil {
		return err
	}
	u.uploadURL = resp.UploadURL
	u.fileId = resp.FileId
	u.state = UploadStateReserved
	return nil
}

func (u *upload) transfer(ctx context.Context) error {
	if err := u.client.uploadBytes(ctx, u.uploadURL, u.file.ContentType, u.file.Data); err != nil {
		return err
	}
	u.state = UploadStateTransferred
	return nil
}

func (u *upload) finalize(ctx context.Context) error {
	f, err := u.client.completeUploadExternal(ctx, u.fileId, u.file.Title)
	if err != nil {
		return err
	}
	u.displayRef = f.URLPrivate
	u.state = UploadStateFinalized
	return nil
}

func (u *upload) publish(ctx context.Context, text string) (*chat.Ack, error) {
	resp, err := u.client.postMessage(ctx, postMessageRequest{
		Channel: u.client.channelId,
		Text:    text,
		Blocks:  messageBlocks(text, u.displayRef, u.file.Title),
	})
	if err != nil {
		return nil, err
	}
	u.state = UploadStatePublished
	return &chat.Ack{OK: resp.OK, Channel: resp.Channel, Timestamp: resp.Ts, FileId: u.fileId}, nil
}

func (u *upload) run(ctx context.Context, text string) (*chat.Ack, error) {
	if u.state != UploadStatePending {
		return nil, fmt.Errorf("upload already %s", u.state)
	}
	steps := []func(context.Context) error{u.reserve, u.transfer, u.finalize}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return nil, u.fail(err)
		}
		u.logger.Debugf("slack upload %s, file id: %s", u.state, u.fileId)
	}
	ack, err := u.publish(ctx, text)
	if err != nil {
		return nil, u.fail(err)
	}
	u.logger.Infof("slack upload published, file id: %s, ts: %s", u.fileId, ack.Timestamp)
	return ack, nil
}
