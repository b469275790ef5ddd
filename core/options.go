package core

// FunctionContract declaratively exposes a callable function to a model.
// Parameters is a JSON Schema object.
type FunctionContract struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// GenerateOptions carries per-call generation settings. Nil / empty fields are
// unset and defer to the agent's own defaults.
type GenerateOptions struct {
	Temperature   *float64           `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens     *int               `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty" yaml:"stop_sequences,omitempty"`
	Tools         []FunctionContract `json:"tools,omitempty" yaml:"-"`
}

// Float returns a pointer to v, for use in GenerateOptions literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for use in GenerateOptions literals.
func Int(v int) *int { return &v }

// Merge layers override on top of o and returns the result. Set fields of
// override win; neither input is modified. Either side may be nil.
func (o *GenerateOptions) Merge(override *GenerateOptions) *GenerateOptions {
	out := &GenerateOptions{}
	if o != nil {
		*out = *o
		out.StopSequences = append([]string(nil), o.StopSequences...)
		out.Tools = append([]FunctionContract(nil), o.Tools...)
	}
	if override == nil {
		return out
	}
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		out.MaxTokens = override.MaxTokens
	}
	if len(override.StopSequences) > 0 {
		out.StopSequences = append([]string(nil), override.StopSequences...)
	}
	for _, t := range override.Tools {
		out.Tools = appendContract(out.Tools, t)
	}
	return out
}

// appendContract adds c to cs, replacing an existing contract with the same name.
func appendContract(cs []FunctionContract, c FunctionContract) []FunctionContract {
	for i := range cs {
		if cs[i].Name == c.Name {
			cs[i] = c
			return cs
		}
	}
	return append(cs, c)
}
