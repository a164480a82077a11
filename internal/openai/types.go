package openai

const BackgroundTransparent = "transparent"

type GenerateImageInput struct {
	Prompt     string
	Size       string
	Background string
}

type EditImageInput struct {
	Prompt string
	Image  []byte
	Mask   []byte
	Size   string
}
