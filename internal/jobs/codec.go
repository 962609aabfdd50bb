package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/job"
)

func EncodePayload(t string, payload any) (json.RawMessage, error) {
	if !IsValidType(t) {
		return nil, ErrInvalidJobType
	}

	switch t {
	case TypeMemberAdded:
		switch payload.(type) {
		case MemberAddedPayload, *MemberAddedPayload:
		default:
			return nil, ErrPayloadTypeMismatch
		}

	case TypeTaskAssigned:
		switch payload.(type) {
		case TaskAssignedPayload, *TaskAssignedPayload:
		default:
			return nil, ErrPayloadTypeMismatch
		}
	}

	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the typed payload struct.
func DecodePayload(j job.Job) (any, error) {
	if !IsValidType(j.Type) {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case TypeMemberAdded:
		var p MemberAddedPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, ValidatePayload(j.Type, p)

	case TypeTaskAssigned:
		var p TaskAssignedPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, ValidatePayload(j.Type, p)

	default:
		return nil, ErrInvalidJobType
	}
}

// NewRequest encodes payload and builds an outbox request for it.
func NewRequest(t string, payload any, idempotencyKey string) (job.CreateRequest, error) {
	raw, err := EncodePayload(t, payload)
	if err != nil {
		return job.CreateRequest{}, err
	}

	req := job.CreateRequest{
		Type:        t,
		Payload:     raw,
		MaxAttempts: 10,
	}
	if idempotencyKey != "" {
		key := idempotencyKey
		req.IdempotencyKey = &key
	}
	return req, nil
}
