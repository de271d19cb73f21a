package search

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/seisho/internal/models"
)

// ErrorKind classifies a request rejected before it reaches the engine.
type ErrorKind int

const (
	// InvalidRequest is a malformed or out-of-range parameter.
	InvalidRequest ErrorKind = iota
	// EmptyQuery is a missing, blank or too short query.
	EmptyQuery
)

// RequestError is returned by the Process functions.
type RequestError struct {
	Kind    ErrorKind
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func invalid(format string, args ...interface{}) error {
	return &RequestError{Kind: InvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func empty(format string, args ...interface{}) error {
	return &RequestError{Kind: EmptyQuery, Message: fmt.Sprintf(format, args...)}
}

// ProcessCrossReference trims the query, enforces minLength (in characters) and
// resolves the scope. A volume, when given, must be one of volumes.
func ProcessCrossReference(req *models.CrossReferenceRequest, minLength int, volumes []string) (models.Scope, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" || utf8.RuneCountInString(req.Query) < minLength {
		return models.Scope{}, empty("query must be at least %d characters", max(minLength, 1))
	}
	req.Volume = strings.TrimSpace(req.Volume)
	if req.Volume != "" && !slices.Contains(volumes, req.Volume) {
		return models.Scope{}, invalid("unknown volume %q", req.Volume)
	}
	scope, err := req.ToScope()
	if err != nil {
		return models.Scope{}, invalid("%s", err.Error())
	}
	return scope, nil
}

// ProcessProximity checks both terms and returns the distance to search with,
// defaultDistance when the request leaves it unset.
func ProcessProximity(req *models.ProximityRequest, defaultDistance int) (int, error) {
	if strings.TrimSpace(req.Term1) == "" || strings.TrimSpace(req.Term2) == "" {
		return 0, empty("term1 and term2 are required")
	}
	distance := defaultDistance
	if req.MaxDistance != nil {
		distance = *req.MaxDistance
	}
	if distance < 0 {
		return 0, invalid("max_distance must not be negative")
	}
	return distance, nil
}

// ProcessFrequency drops blank terms and requires at least one to remain.
func ProcessFrequency(req *models.FrequencyRequest) error {
	terms := make([]string, 0, len(req.Terms))
	for _, t := range req.Terms {
		if strings.TrimSpace(t) != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return empty("at least one term is required")
	}
	req.Terms = terms
	req.Book = strings.TrimSpace(req.Book)
	return nil
}
