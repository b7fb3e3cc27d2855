package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithInitialData stages the initial contents of the uniform buffer at binding. The buffer is
// created holding data instead of zeroes and its size is len(data).
//
// Parameters:
//   - binding: the binding index
//   - data: the initial buffer contents
//
// Returns:
//   - BindGroupProviderOption: a function that stages the data on the provider
func WithInitialData(binding int, data []byte) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.initial[binding] = data
	}
}
