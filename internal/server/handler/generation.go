package handler

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haojie06/canvas-relay/internal/logger"
	"github.com/haojie06/canvas-relay/internal/model"
	"github.com/haojie06/canvas-relay/internal/storage"
	"github.com/haojie06/canvas-relay/internal/utils"
)

const imageContentType = "image/png"

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type ObjectWriter interface {
	Put(ctx context.Context, loc storage.Locator, data []byte, contentType string) error
}

type GenerationHandler struct {
	generator ImageGenerator

	store ObjectWriter

	bucket string

	now func() time.Time

	randLock sync.Mutex

	randGenerator *rand.Rand
}

func NewGenerationHandler(generator ImageGenerator, store ObjectWriter, bucket string, r *rand.Rand) *GenerationHandler {
	return &GenerationHandler{
		generator:     generator,
		store:         store,
		bucket:        bucket,
		now:           time.Now,
		randGenerator: r,
	}
}

func (h *GenerationHandler) newLocator() storage.Locator {
	h.randLock.Lock()
	defer h.randLock.Unlock()
	return storage.Locator{Bucket: h.bucket, Key: storage.NewImageKey(h.now(), h.randGenerator)}
}

// Generate handles POST /generate.
func (h *GenerationHandler) Generate(c *gin.Context) {
	log := logger.NewCustomLogger().With("requestId", utils.RequestId(c))
	var req model.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinFailedWithDetail(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		utils.GinFailedWithMessage(c, http.StatusBadRequest, "prompt is required")
		return
	}
	log.Infof("receive generation request, prompt: %s", req.Prompt)

	image, err := h.generator.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		log.Errorf("failed to generate image: %v", err)
		utils.GinFailedWithDetail(c, http.StatusInternalServerError, "Failed to generate image", err)
		return
	}

	loc := h.newLocator()
	log.Infof("save image to %s, size: %d", loc, len(image))
	if err := h.store.Put(c.Request.Context(), loc, image, imageContentType); err != nil {
		log.Errorf("failed to save image: %v", err)
		utils.GinFailedWithDetail(c, http.StatusInternalServerError, "Failed to generate image", err)
		return
	}

	c.JSON(http.StatusOK, model.GenerationResponse{
		Success: true,
		S3URL:   loc.String(),
		Prompt:  req.Prompt,
	})
}
