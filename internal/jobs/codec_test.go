package jobs

import (
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/job"
)

func TestEncodeDecode_MemberAdded(t *testing.T) {
	payload := MemberAddedPayload{
		WorkspaceID:   10,
		WorkspaceName: "Eng",
		UserID:        20,
		Email:         "b@example.com",
		Role:          "MEMBER",
		AddedBy:       1,
	}

	req, err := NewRequest(TypeMemberAdded, payload, "member_added:10:20")
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	if req.IdempotencyKey == nil || *req.IdempotencyKey != "member_added:10:20" {
		t.Fatalf("expected idempotency key to be set")
	}

	decoded, err := DecodePayload(job.New(req))
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(MemberAddedPayload)
	if !ok {
		t.Fatalf("expected MemberAddedPayload, got %T", decoded)
	}

	if p.Email != payload.Email || p.WorkspaceID != payload.WorkspaceID {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(TypeMemberAdded, TaskAssignedPayload{
		TaskID:     1,
		AssigneeID: 2,
		Email:      "x@example.com",
	})
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayload_UnknownType(t *testing.T) {
	if _, err := EncodePayload("nope", MemberAddedPayload{}); !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestValidatePayload_RequiredIDs(t *testing.T) {
	err := ValidatePayload(TypeTaskAssigned, TaskAssignedPayload{TaskID: 1, Email: "x@example.com"})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestDecodePayload_Empty(t *testing.T) {
	_, err := DecodePayload(job.Job{Type: TypeTaskAssigned})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}
