package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/haojie06/canvas-relay/internal/config"
	"github.com/haojie06/canvas-relay/internal/logger"
)

var (
	ErrNoImage       = errors.New("no image returned from model")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrProviderError = errors.New("model reported an error")
)

// InvokeModelAPI is the slice of the bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	api InvokeModelAPI

	config config.ImageGenConfig

	randLock sync.Mutex

	randGenerator *rand.Rand
}

func NewClient(ctx context.Context, c config.ImageGenConfig) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), c, rand.New(rand.NewSource(time.Now().UnixNano()))), nil
}

func NewClientWithAPI(api InvokeModelAPI, c config.ImageGenConfig, r *rand.Rand) *Client {
	return &Client{
		api:           api,
		config:        c,
		randGenerator: r,
	}
}

func (c *Client) nextSeed() int64 {
	c.randLock.Lock()
	defer c.randLock.Unlock()
	return c.randGenerator.Int63n(c.config.SeedMax)
}

// BuildRequest fixes everything but the prompt and a fresh seed.
func (c *Client) BuildRequest(prompt string) InvokeRequest {
	return InvokeRequest{
		TaskType: TaskTypeTextImage,
		TextToImageParams: TextToImageParams{
			Text: prompt,
		},
		ImageGenerationConfig: GenerationConfig{
			NumberOfImages: 1,
			Quality:        c.config.Quality,
			CfgScale:       c.config.CfgScale,
			Height:         c.config.Height,
			Width:          c.config.Width,
			Seed:           c.nextSeed(),
		},
	}
}

// Generate returns the decoded bytes of the first image for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	req := c.BuildRequest(prompt)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	logger.Infof("request to model %s, seed: %d", c.config.ModelId, req.ImageGenerationConfig.Seed)

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.config.ModelId),
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model %s: %w", c.config.ModelId, err)
	}

	var resp InvokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderError, resp.Error)
	}
	if len(resp.Images) == 0 || resp.Images[0] == "" {
		return nil, ErrNoImage
	}
	image, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return image, nil
}
