package triggers

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/yukikurage/team-todo-api/internal/triggers"

// Publisher hands a mutation to whatever runs the handlers.
type Publisher interface {
	Publish(ctx context.Context, m Mutation) error
}

// Dispatcher runs matching handlers in-process. It is also the inline
// Publisher: publishing a mutation dispatches it synchronously.
type Dispatcher struct {
	registry *Registry
	tracer   trace.Tracer
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		tracer:   otel.Tracer(tracerName),
	}
}

// Publish implements Publisher.
func (d *Dispatcher) Publish(ctx context.Context, m Mutation) error {
	return d.Dispatch(ctx, m)
}

// Dispatch invokes every handler subscribed to the mutation. A failing
// handler does not stop the others; all failures are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, m Mutation) error {
	var errs []error
	for _, sub := range d.registry.match(m) {
		if err := d.invoke(ctx, sub, m); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"handler":  sub.name,
				"kind":     m.Kind,
				"key":      m.Key,
				"mutation": m.ID,
			}).Error("trigger handler failed")
			errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) invoke(ctx context.Context, sub subscription, m Mutation) error {
	ctx, span := d.tracer.Start(ctx, "trigger."+sub.name, trace.WithAttributes(
		attribute.String("mutation.id", m.ID),
		attribute.String("mutation.kind", string(m.Kind)),
		attribute.String("mutation.op", string(m.Op)),
		attribute.String("mutation.key", m.Key),
	))
	defer span.End()

	if err := sub.handler(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
