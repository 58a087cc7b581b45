package usecase

import (
	"fmt"
)

const systemPrompt = "You are a helpful assistant that always responds in valid JSON format."

func BuildResourcePrompt(subject, baseCurrency string) Prompt {
	user := fmt.Sprintf(`Find the best learning resources for %s. For each category (Beginner, Intermediate, Advanced), provide both free and paid resources. Include courses, tutorials, documentation, books, and any other valuable learning materials. For each resource, provide:
- Title
- URL
- Brief description (1-2 sentences)
- Type (course, book, tutorial, etc.)
- Estimated time to complete
- Price (if paid, in %s; use "Free" for free resources)

Format the response as a JSON object with the following structure:
{
    "beginner": {
        "free": [resources],
        "paid": [resources]
    },
    "intermediate": {
        "free": [resources],
        "paid": [resources]
    },
    "advanced": {
        "free": [resources],
        "paid": [resources]
    }
}

Each resource must be an object with the keys "title", "url", "description", "type", "estimatedTime" and "price".`, subject, baseCurrency)

	return Prompt{System: systemPrompt, User: user}
}
