package imagegen

const (
	TaskTypeTextImage = "TEXT_IMAGE"
	jsonContentType   = "application/json"
)

// Nova Canvas request body.
type InvokeRequest struct {
	TaskType string `json:"taskType"`

	TextToImageParams TextToImageParams `json:"textToImageParams"`

	ImageGenerationConfig GenerationConfig `json:"imageGenerationConfig"`
}

type TextToImageParams struct {
	Text string `json:"text"`

	NegativeText string `json:"negativeText,omitempty"`
}

type GenerationConfig struct {
	NumberOfImages int `json:"numberOfImages"`

	Quality string `json:"quality"`

	CfgScale float64 `json:"cfgScale"`

	Height int `json:"height"`

	Width int `json:"width"`

	Seed int64 `json:"seed"`
}

type InvokeResponse struct {
	Images []string `json:"images"` // base64 encoded png

	Error string `json:"error,omitempty"`
}
