// Package validation holds the enumeration and text rules shared by every
// request schema. Rules are registered once on gin's validator engine and referenced
// from binding tags.
package validation

import (
	"strings"
	"sync"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	TagTaskPriority = "task_priority"
	TagTaskStatus   = "task_status"
	TagMemberRole   = "member_role"

	// TagNotBlank rejects strings that are empty once surrounding
	// whitespace is trimmed.
	TagNotBlank = "notblank"
)

// Enum is a named set of accepted string values for one entity field.
type Enum struct {
	Tag    string
	Values []string
}

func (e Enum) Contains(v string) bool {
	for _, allowed := range e.Values {
		if v == allowed {
			return true
		}
	}
	return false
}

func (e Enum) String() string {
	return strings.Join(e.Values, ", ")
}

var enums = map[string]Enum{
	TagTaskPriority: {Tag: TagTaskPriority, Values: toStrings(task.Priorities)},
	TagTaskStatus:   {Tag: TagTaskStatus, Values: toStrings(task.Statuses)},
	TagMemberRole:   {Tag: TagMemberRole, Values: toStrings(workspace.AssignableRoles)},
}

// Lookup returns the enum registered under tag.
func Lookup(tag string) (Enum, bool) {
	e, ok := enums[tag]
	return e, ok
}

var registerOnce sync.Once

// Register installs the enum rules on gin's default validator. Safe to call
// more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = RegisterOn(v)
	})
	return err
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation(TagNotBlank, notBlank); err != nil {
		return err
	}

	for tag, e := range enums {
		enum := e
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return enum.Contains(fl.Field().String())
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
