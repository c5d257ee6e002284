// Tracing instrumentation for the engine.
package workflow

import (
	"context"

	"github.com/vinayprograms/agentkit/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/task"
)

// startTaskSpan starts a span covering one full task run.
func (e *Engine) startTaskSpan(ctx context.Context, st *task.State) (context.Context, trace.Span) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.StartSpan(ctx, "task.run")
	span.SetAttributes(
		attribute.String("task.id", st.TaskID),
		attribute.String("task.type", st.TaskType),
		attribute.Int("task.max_iterations", st.MaxIterations),
	)
	return ctx, span
}

// endTaskSpan ends the task span with the terminal outcome.
func (e *Engine) endTaskSpan(span trace.Span, st *task.State) {
	span.SetAttributes(
		attribute.String("task.status", string(st.Status)),
		attribute.Int("task.iterations", st.IterationCount),
		attribute.Int("task.errors", len(st.Errors)),
	)
	span.End()
}

// startNodeSpan starts a span for one node execution.
func (e *Engine) startNodeSpan(ctx context.Context, role agent.Role, st *task.State) (context.Context, trace.Span) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.StartSpan(ctx, "node."+string(role))
	span.SetAttributes(
		attribute.String("node.role", string(role)),
		attribute.String("task.id", st.TaskID),
		attribute.Int("task.iteration", st.IterationCount),
	)
	return ctx, span
}

// endNodeSpan ends a node span with the state observed after the node.
func (e *Engine) endNodeSpan(span trace.Span, st *task.State) {
	span.SetAttributes(
		attribute.String("task.status", string(st.Status)),
		attribute.String("task.next_agent", st.NextAgent),
	)
	span.End()
}
