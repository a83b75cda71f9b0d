package llm

// Gemini Model IDs
//
// | Model Name            | API Model ID          | Use Case                      |
// |-----------------------|-----------------------|-------------------------------|
// | Gemini 2.0 Flash      | gemini-2.0-flash      | Default for campaign analysis |
// | Gemini 2.5 Flash      | gemini-2.5-flash      | Stable, balanced performance  |
// | Gemini 2.5 Flash-Lite | gemini-2.5-flash-lite | High-throughput, lowest cost  |
// | Gemini 2.5 Pro        | gemini-2.5-pro        | Long analyses, deeper reasoning |
const (
	ModelGemini20Flash     = "gemini-2.0-flash"
	ModelGemini25Flash     = "gemini-2.5-flash"
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"
	ModelGemini25Pro       = "gemini-2.5-pro"
)

// OpenAI model IDs usable through the Responses API.
const (
	ModelGPT4oMini = "gpt-4o-mini"
	ModelGPT41Mini = "gpt-4.1-mini"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return ModelGPT4oMini
	}
	return ModelGemini20Flash
}
