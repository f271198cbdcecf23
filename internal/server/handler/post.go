package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/canvas-relay/internal/chat"
	"github.com/haojie06/canvas-relay/internal/config"
	"github.com/haojie06/canvas-relay/internal/logger"
	"github.com/haojie06/canvas-relay/internal/model"
	"github.com/haojie06/canvas-relay/internal/storage"
	"github.com/haojie06/canvas-relay/internal/utils"
)

type ObjectReader interface {
	Get(ctx context.Context, loc storage.Locator) (*storage.Object, error)
}

type PostHandler struct {
	store ObjectReader

	poster chat.Poster

	bucket string

	configErr error // non-nil fails every request before any outbound call
}

// NewPostHandler accepts a nil poster when chat credentials are missing.
func NewPostHandler(cfg *config.Config, store ObjectReader, poster chat.Poster) *PostHandler {
	configErr := cfg.Chat.Validate()
	if configErr == nil && poster == nil {
		configErr = config.ErrChatNotConfigured
	}
	return &PostHandler{
		store:     store,
		poster:    poster,
		bucket:    cfg.Storage.Bucket,
		configErr: configErr,
	}
}

// Post handles POST /.
func (h *PostHandler) Post(c *gin.Context) {
	log := logger.NewCustomLogger().With("requestId", utils.RequestId(c))
	if h.configErr != nil {
		log.Errorf("chat is not configured: %v", h.configErr)
		utils.GinFailedWithMessage(c, http.StatusInternalServerError, "internal service error.")
		return
	}

	var req model.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinFailedWithDetail(c, http.StatusBadRequest, "invalid request body.", err)
		return
	}
	if req.Message == "" {
		utils.GinFailedWithMessage(c, http.StatusBadRequest, "message is required.")
		return
	}

	ctx := c.Request.Context()
	if req.S3URL == "" {
		ack, err := h.poster.PostText(ctx, req.Message)
		if err != nil {
			log.Errorf("failed to post message: %v", err)
			utils.GinFailedWithDetail(c, http.StatusInternalServerError, "failed to post message.", err)
			return
		}
		c.JSON(http.StatusOK, model.PostResponse{Result: ack.OK, Response: ack})
		return
	}

	loc, err := storage.ParseLocatorInBucket(req.S3URL, h.bucket)
	if err != nil {
		log.Warnf("reject locator: %v", err)
		utils.GinFailedWithMessage(c, http.StatusBadRequest, "invalid s3Url.")
		return
	}

	obj, err := h.store.Get(ctx, loc)
	if err != nil {
		if errors.Is(err, storage.ErrObjectTooLarge) {
			log.Warnf("object too large: %v", err)
		} else {
			log.Errorf("failed to download %s: %v", loc, err)
		}
		utils.GinFailedWithDetail(c, http.StatusInternalServerError, "failed to download image.", err)
		return
	}
	log.Infof("downloaded %s, size: %d, content type: %s", loc, len(obj.Data), obj.ContentType)

	ack, err := h.poster.PostImage(ctx, req.Message, chat.File{
		Name:        loc.FileName(),
		Title:       loc.FileName(),
		ContentType: obj.ContentType,
		Data:        obj.Data,
	})
	if err != nil {
		log.Errorf("failed to upload image: %v", err)
		utils.GinFailedWithDetail(c, http.StatusInternalServerError, "failed to upload image.", err)
		return
	}
	c.JSON(http.StatusOK, model.PostResponse{Result: ack.OK, Response: ack})
}
