// Package authz defines the permission-check contract consulted before
// executions start.
package authz

import "context"

// Action names an operation a subject may perform on a workflow.
type Action string

const (
	ActionViewWorkflow    Action = "view_workflow"
	ActionExecuteWorkflow Action = "execute_workflow"
	ActionCancelExecution Action = "cancel_execution"
	ActionViewExecution   Action = "view_execution"
)

// Authorizer decides whether a subject may perform an action on a workflow.
type Authorizer interface {
	Allow(ctx context.Context, subject, workflowID string, action Action) bool
}

// AllowAll permits everything. The default when no authorizer is configured.
type AllowAll struct{}

func (AllowAll) Allow(_ context.Context, _, _ string, _ Action) bool {
	return true
}

// StaticRoles authorizes from a fixed subject -> allowed actions map,
// initialized at startup and immutable afterwards.
type StaticRoles struct {
	grants map[string]map[Action]bool
}

// NewStaticRoles builds an authorizer from subject to action grants.
func NewStaticRoles(grants map[string][]Action) *StaticRoles {
	bysubject := make(map[string]map[Action]bool, len(grants))

	for subject, actions := range grants {
		allowed := make(map[Action]bool, len(actions))
		for _, action := range actions {
			allowed[action] = true
		}

		bysubject[subject] = allowed
	}

	return &StaticRoles{grants: bysubject}
}

func (s *StaticRoles) Allow(_ context.Context, subject, _ string, action Action) bool {
	allowed, ok := s.grants[subject]
	if !ok {
		return false
	}

	return allowed[action]
}

type contextKey string

const subjectKey contextKey = "subject"

// WithSubject attaches the acting subject to a context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the acting subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)

	return subject, ok
}
