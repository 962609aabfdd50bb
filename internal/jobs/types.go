package jobs

const (
	TypeMemberAdded  = "workspace.member_added"
	TypeTaskAssigned = "task.assigned"
)

// IsValidType reports whether t is a job type the worker knows how to run.
func IsValidType(t string) bool {
	switch t {
	case TypeMemberAdded, TypeTaskAssigned:
		return true
	default:
		return false
	}
}
