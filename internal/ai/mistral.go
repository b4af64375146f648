package ai

// newMistral returns an OpenAI-compatible provider pointed at Mistral.
func newMistral(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-small-latest"
	}
	p := newOpenAI(cfg)
	p.name = "mistral"
	return p
}
