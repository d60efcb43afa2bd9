package dispatch

import "fmt"

// SearchRequest is the validated payload for the search tool.
type SearchRequest struct {
	Query string
	Limit int
}

// MemorizeRequest is the validated payload for the memorize tool.
type MemorizeRequest struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// FeedbackRequest is the validated payload for the feedback tool.
type FeedbackRequest struct {
	ID              string
	ScoreAdjustment float64
}

// DeleteRequest is the validated payload for the delete tool.
type DeleteRequest struct {
	ID string
}

// ParseSearch validates and extracts a SearchRequest from a wire
// argument map. query is required and must be non-empty; limit, when
// present, must be a non-negative integer.
func ParseSearch(args map[string]any) (*SearchRequest, error) {
	query, err := requiredString(args, "search", "query")
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, invalidArgf("search", "query must not be empty")
	}

	limit := 0
	if raw, ok := args["limit"]; ok {
		n, err := asInt(raw)
		if err != nil {
			return nil, invalidArgf("search", "limit must be an integer: %v", err)
		}
		if n < 0 {
			return nil, invalidArgf("search", "limit must be >= 0")
		}
		limit = n
	}

	return &SearchRequest{Query: query, Limit: limit}, nil
}

// ParseMemorize validates and extracts a MemorizeRequest. id and text
// are required; metadata, when present, must be an object.
func ParseMemorize(args map[string]any) (*MemorizeRequest, error) {
	id, err := requiredString(args, "memorize", "id")
	if err != nil {
		return nil, err
	}
	text, err := requiredString(args, "memorize", "text")
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if raw, ok := args["metadata"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, invalidArgf("memorize", "metadata must be an object")
		}
		metadata = m
	}

	return &MemorizeRequest{ID: id, Text: text, Metadata: metadata}, nil
}

// ParseFeedback validates and extracts a FeedbackRequest. id and
// scoreAdjustment are required; scoreAdjustment must be finite.
func ParseFeedback(args map[string]any) (*FeedbackRequest, error) {
	id, err := requiredString(args, "feedback", "id")
	if err != nil {
		return nil, err
	}

	raw, ok := args["scoreAdjustment"]
	if !ok || raw == nil {
		return nil, invalidArgf("feedback", "scoreAdjustment is required")
	}
	adj, err := asFloat(raw)
	if err != nil {
		return nil, invalidArgf("feedback", "scoreAdjustment must be a number: %v", err)
	}
	if err := requireFinite("feedback", "scoreAdjustment", adj); err != nil {
		return nil, err
	}

	return &FeedbackRequest{ID: id, ScoreAdjustment: adj}, nil
}

// ParseDelete validates and extracts a DeleteRequest. id is required.
func ParseDelete(args map[string]any) (*DeleteRequest, error) {
	id, err := requiredString(args, "delete", "id")
	if err != nil {
		return nil, err
	}
	return &DeleteRequest{ID: id}, nil
}

func requiredString(args map[string]any, tool, field string) (string, error) {
	raw, ok := args[field]
	if !ok || raw == nil {
		return "", invalidArgf(tool, "%s is required", field)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidArgf(tool, "%s must be a string", field)
	}
	return s, nil
}

func asInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("not an integer")
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

func asFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
