package usecase

import (
	"encoding/json"
	"regexp"
	"strings"

	"resource-finder/internal/domain/learning"
	"resource-finder/internal/pkg/errs"
)

var fencePattern = regexp.MustCompile("```json\\s*|\\s*```")

// CleanContent strips markdown code fences the model wraps around JSON.
func CleanContent(content string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(content, ""))
}

func parseResourceSet(content string) (learning.ResourceSet, error) {
	var set learning.ResourceSet
	if err := json.Unmarshal([]byte(content), &set); err != nil {
		return learning.ResourceSet{}, &ParseError{Content: content, Err: err}
	}
	if !set.IsObject() {
		return learning.ResourceSet{}, &ParseError{Content: content, Err: errNotAnObject}
	}
	return set, nil
}

var errNotAnObject = errs.New("reply is not a JSON object")
