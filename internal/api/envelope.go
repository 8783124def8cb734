package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookclubapp/bookclub-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the same envelope the
// plain handlers use, so clients see one shape across the whole API.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return response.Envelope{
			Success: false,
			Error:   apiErr.Message,
			Data:    apiErr.Details,
		}, nil
	}

	return response.Envelope{
		Success: strings.HasPrefix(status, "2"),
		Data:    v,
	}, nil
}
