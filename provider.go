package sheetcalc

import (
	"context"
	"fmt"
)

// Provider supplies values for $(SYMBOL) tokens. Lookups are stateless and
// do not take part in the dependency graph.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, symbol string) (string, error)

// Lookup calls f.
func (f ProviderFunc) Lookup(ctx context.Context, symbol string) (string, error) {
	return f(ctx, symbol)
}

// StaticProvider serves lookups from a fixed map.
type StaticProvider map[string]string

// Lookup returns the value stored for symbol.
func (p StaticProvider) Lookup(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := p[symbol]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return v, nil
}

type noProvider struct{}

func (noProvider) Lookup(context.Context, string) (string, error) {
	return "", ErrNoProvider
}
