package pdf

import (
	"context"
	"io"
)

// Provider renders printable documents for the commercial flows.
type Provider interface {
	GenerateOrder(ctx context.Context, data OrderData) (io.Reader, error)
	GenerateServiceOrder(ctx context.Context, data ServiceOrderData) (io.Reader, error)
}
