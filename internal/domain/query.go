package domain

// InferenceQuery is a single prompt plus the images it refers to.
// Built fresh for every call and never shared between requests.
type InferenceQuery struct {
	Prompt    string
	Images    []EncodedImage
	MaxTokens int
}

func NewInferenceQuery(prompt string, maxTokens int, images ...EncodedImage) *InferenceQuery {
	return &InferenceQuery{
		Prompt:    prompt,
		Images:    images,
		MaxTokens: maxTokens,
	}
}
