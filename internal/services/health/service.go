package health

import "nextcv/internal/shared/config"

// Status is the health payload.
type Status struct {
	OK bool `json:"ok"`
	// Provider and Model name the configured completion service.
	Provider string `json:"provider"`
	Model    string `json:"model"`
	// ServerCredential reports whether requests without a key can be served.
	ServerCredential bool `json:"serverCredential"`
}

// Service encapsulates health-related checks.
type Service struct {
	llm config.LLMConfig
}

// NewService constructs a new health service.
func NewService(cfg config.LLMConfig) *Service {
	return &Service{llm: cfg}
}

// Status returns the health payload. It never contacts the provider.
func (s *Service) Status() Status {
	return Status{
		OK:               true,
		Provider:         s.llm.Provider,
		Model:            s.llm.Model,
		ServerCredential: s.llm.APIKey() != "",
	}
}
