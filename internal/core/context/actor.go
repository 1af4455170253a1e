// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// ActorType distinguishes who drove a transaction.
type ActorType string

const (
	ActorTypeCashier  ActorType = "cashier"
	ActorTypeCustomer ActorType = "customer"
	ActorTypeSystem   ActorType = "system"
)

// ActorContext contains the acting identity behind a request.
// Populated by the auth middleware from the bearer token; the system
// actor is used by background jobs (intent reconciliation).
type ActorContext struct {
	ActorID  string
	Type     ActorType
	Name     string
	Terminal string // checkout terminal identifier, if any
}

type actorContextKey struct{}

// WithActor adds ActorContext to context.
func WithActor(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns ActorContext from context.
func GetActor(ctx context.Context) *ActorContext {
	if v, ok := ctx.Value(actorContextKey{}).(*ActorContext); ok {
		return v
	}
	return nil
}

// GetActorID returns actor ID from context or empty string.
func GetActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.ActorID
	}
	return ""
}

// SystemActor returns the identity used by background processes.
func SystemActor() *ActorContext {
	return &ActorContext{ActorID: "system", Type: ActorTypeSystem, Name: "system"}
}
