package json

import "github.com/fwojciec/concierge"

type usageDTO struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func marshalUsage(u concierge.Usage) usageDTO {
	return usageDTO{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}

func unmarshalUsage(dto usageDTO) concierge.Usage {
	return concierge.Usage{InputTokens: dto.InputTokens, OutputTokens: dto.OutputTokens}
}
