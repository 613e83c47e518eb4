package session

import (
	"context"
	"errors"
	"fmt"

	"aoedash/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrRenderLoop is returned when a page keeps requesting re-renders past the
// driver's pass limit. It means a render function commits something new on
// every pass and would otherwise spin forever.
var ErrRenderLoop = errors.New("render loop did not settle")

// DefaultMaxPasses bounds how many times one user action may re-run a page.
// A well-behaved page needs two: one that commits, one that settles.
const DefaultMaxPasses = 4

// RenderFunc renders one pass of a page. It returns the output and whether
// another pass is needed because committed state changed.
type RenderFunc[In, Out any] func(ctx context.Context, sc *Context, in In) (Out, bool, error)

// Driver re-executes a render function until it stops asking for a re-render.
type Driver struct {
	MaxPasses int
}

// NewDriver creates a driver. maxPasses <= 0 selects DefaultMaxPasses.
func NewDriver(maxPasses int) *Driver {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Driver{MaxPasses: maxPasses}
}

// Run drives render for one user action and returns the settled output and
// the number of passes it took.
func Run[In, Out any](ctx context.Context, d *Driver, sc *Context, in In, render RenderFunc[In, Out]) (Out, int, error) {
	ctx, span := otel.Tracer("aoedash/session").Start(ctx, "session.Run")
	defer span.End()

	var zero Out
	for pass := 1; pass <= d.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return zero, pass - 1, err
		}

		sc.beginPass()
		out, rerender, err := render(ctx, sc, in)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return out, pass, err
		}
		if !rerender {
			span.SetAttributes(attribute.Int("render.passes", pass))
			logging.Render("session %s settled after %d pass(es)", sc.ID, pass)
			return out, pass, nil
		}
		logging.Render("session %s pass %d requested a re-render", sc.ID, pass)
	}

	err := fmt.Errorf("%w after %d passes", ErrRenderLoop, d.MaxPasses)
	span.SetStatus(codes.Error, err.Error())
	logging.RenderError("session %s: %v", sc.ID, err)
	return zero, d.MaxPasses, err
}
