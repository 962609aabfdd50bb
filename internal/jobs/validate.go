package jobs

import "strings"

// ValidatePayload performs minimal validation on payloads.
func ValidatePayload(t string, payload any) error {
	if !IsValidType(t) {
		return ErrInvalidJobType
	}

	switch t {
	case TypeMemberAdded:
		var p MemberAddedPayload
		switch v := payload.(type) {
		case MemberAddedPayload:
			p = v
		case *MemberAddedPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if p.WorkspaceID <= 0 || p.UserID <= 0 || strings.TrimSpace(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case TypeTaskAssigned:
		var p TaskAssignedPayload
		switch v := payload.(type) {
		case TaskAssignedPayload:
			p = v
		case *TaskAssignedPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if p.TaskID <= 0 || p.AssigneeID <= 0 || strings.TrimSpace(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
