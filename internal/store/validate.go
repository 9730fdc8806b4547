package store

import (
	"strings"

	"mailtriage/internal/model"
)

// NormalizeInput trims the title, defaults the priority to medium and rejects
// malformed input.
func NormalizeInput(op string, in model.TaskInput) (model.TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, Invalid(op, "title is required")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		return in, Invalid(op, "unknown priority %q", in.Priority)
	}
	if in.DueDate != nil && in.DueDate.IsZero() {
		in.DueDate = nil
	}
	if in.EmailID != nil && *in.EmailID == "" {
		in.EmailID = nil
	}
	return in, nil
}

// NormalizePatch applies the same field rules as NormalizeInput to the fields
// present in the patch.
func NormalizePatch(op string, p model.TaskPatch) (model.TaskPatch, error) {
	if p.Empty() {
		return p, Invalid(op, "empty update")
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, Invalid(op, "title must not be empty")
		}
		p.Title = &title
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return p, Invalid(op, "unknown priority %q", *p.Priority)
	}
	return p, nil
}
