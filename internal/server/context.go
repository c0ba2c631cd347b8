package server

import (
	"context"

	"luciadash/internal/database"
)

type contextKey string

const operatorContextKey contextKey = "operator"

// setOperatorContext adds the authenticated operator to the context.
func setOperatorContext(ctx context.Context, op *database.Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, op)
}

// getOperatorFromContext retrieves the authenticated operator, nil when
// the request did not pass the auth middleware.
func getOperatorFromContext(ctx context.Context) *database.Operator {
	op, _ := ctx.Value(operatorContextKey).(*database.Operator)
	return op
}
