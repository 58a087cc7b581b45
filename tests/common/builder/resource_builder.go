//go:build unit || e2e

package builder

import (
	"encoding/json"

	"resource-finder/internal/domain/currency"
	"resource-finder/internal/domain/learning"
	"resource-finder/internal/usecase"
)

type ResourceSetBuilder struct {
	Subject  string
	FreeURL  string
	PaidURL  string
	Price    string
	Currency string
	Levels   []learning.Level
}

func NewResourceSetBuilder() *ResourceSetBuilder {
	return &ResourceSetBuilder{
		Subject:  "Go",
		FreeURL:  "https://go.dev/tour",
		PaidURL:  "https://example.com/go-course",
		Price:    "$19.99",
		Currency: currency.USD,
		Levels:   learning.Levels,
	}
}

func (b *ResourceSetBuilder) With(mutate func(*ResourceSetBuilder)) *ResourceSetBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *ResourceSetBuilder) BuildSet() learning.ResourceSet {
	set := learning.ResourceSet{Levels: make(map[learning.Level]*learning.Slots, len(b.Levels))}
	for _, level := range b.Levels {
		set.Levels[level] = &learning.Slots{Items: map[learning.Category][]learning.Resource{
			learning.CategoryFree: {{
				Title:         learning.Text(b.Subject + " " + string(level) + " guide"),
				URL:           learning.Text(b.FreeURL),
				Description:   learning.Text("Free " + string(level) + " material"),
				Type:          "tutorial",
				EstimatedTime: "2 hours",
				Price:         currency.FreeMarker,
			}},
			learning.CategoryPaid: {{
				Title:         learning.Text(b.Subject + " " + string(level) + " course"),
				URL:           learning.Text(b.PaidURL),
				Description:   learning.Text("Paid " + string(level) + " course"),
				Type:          "course",
				EstimatedTime: "10 hours",
				Price:         learning.Text(b.Price),
			}},
		}}
	}
	return set
}

// BuildReply renders the set the way the model returns it.
func (b *ResourceSetBuilder) BuildReply() string {
	raw, _ := json.Marshal(b.BuildSet())
	return string(raw)
}

// BuildFencedReply wraps the reply in a markdown json fence.
func (b *ResourceSetBuilder) BuildFencedReply() string {
	return "```json\n" + b.BuildReply() + "\n```"
}

func (b *ResourceSetBuilder) BuildListing() *usecase.ResourceListing {
	return &usecase.ResourceListing{
		Currency:  currency.DefaultTable().Info(b.Currency),
		Resources: b.BuildSet(),
	}
}
