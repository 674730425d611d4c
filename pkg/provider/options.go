package provider

// settings are the addressable parts shared by remote configs.
type settings struct {
	endpoint  string
	model     string
	maxTokens int64
}

// Option overrides a remote config's defaults.
type Option func(*settings)

// WithEndpoint overrides the request URL.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithModel overrides the model id placed in the request.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxTokens overrides the output token cap.
func WithMaxTokens(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

func newSettings(endpoint, model string, opts []Option) settings {
	s := settings{endpoint: endpoint, model: model, maxTokens: 1024}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Model returns the configured model id.
func (s settings) Model() string {
	return s.model
}
