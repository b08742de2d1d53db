package concierge

// Usage tracks token consumption.
//
// Engines normalize their API-specific fields so that
//
//	InputTokens  = prompt tokens, including any served from cache
//	OutputTokens = generated tokens
//
// and clamp to zero when upstream data is inconsistent.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add returns the sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
	}
}

// Total returns all tokens consumed.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }
