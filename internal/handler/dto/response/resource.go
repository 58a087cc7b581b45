package response

import (
	"resource-finder/internal/domain/learning"
	"resource-finder/internal/usecase"
)

type CurrencyResponse struct {
	Code   string `json:"code" example:"INR"`
	Symbol string `json:"symbol" example:"₹"`
}

type ResourcesResponse struct {
	Currency  CurrencyResponse     `json:"currency"`
	Resources learning.ResourceSet `json:"resources" swaggertype:"object"`
}

func FromResourceListing(l *usecase.ResourceListing) *ResourcesResponse {
	return &ResourcesResponse{
		Currency: CurrencyResponse{
			Code:   l.Currency.Code,
			Symbol: l.Currency.Symbol,
		},
		Resources: l.Resources,
	}
}

// UpstreamFailureDetails accompanies "Failed to fetch resources".
type UpstreamFailureDetails struct {
	Status  int    `json:"status,omitempty"`
	Body    string `json:"body,omitempty"`
	Message string `json:"message"`
}

// ParseFailureDetails accompanies "Failed to parse resources".
type ParseFailureDetails struct {
	Content    string `json:"content"`
	ParseError string `json:"parse_error"`
}
