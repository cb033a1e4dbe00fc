package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ClaimStage is the sub-status of a claim request reported by the claim service.
type ClaimStage int

const (
	StagePending ClaimStage = iota
	StageProcessing
	StageBalanceRecorded
	StageClaimAttempted
	StageClaimVerified
	StageWithdrawn
	StageFailed
	StageTimedOut
)

var stageNames = map[ClaimStage]string{
	StagePending:         "Pending",
	StageProcessing:      "Processing",
	StageBalanceRecorded: "BalanceRecorded",
	StageClaimAttempted:  "ClaimAttempted",
	StageClaimVerified:   "ClaimVerified",
	StageWithdrawn:       "Withdrawn",
	StageFailed:          "Failed",
	StageTimedOut:        "TimedOut",
}

func (s ClaimStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ClaimStage(%d)", int(s))
}

func ParseClaimStage(name string) (ClaimStage, bool) {
	for stage, n := range stageNames {
		if n == name {
			return stage, true
		}
	}
	return 0, false
}

// ClaimStatus is one of ClaimActive, ClaimCompleted or ClaimFailed.
type ClaimStatus interface {
	claimStatus()
}

type ClaimActive struct {
	Stage  ClaimStage
	Reason string // set for StageFailed
}

type ClaimCompleted struct {
	Details ClaimDetails
}

type ClaimFailed struct {
	Stage  ClaimStage // StageFailed or StageTimedOut
	Reason string
}

func (ClaimActive) claimStatus()    {}
func (ClaimCompleted) claimStatus() {}
func (ClaimFailed) claimStatus()    {}

type ClaimDetails struct {
	Ledger          string    `json:"ledger"`
	AmountClaimed   uint64    `json:"amount_claimed"`
	AmountWithdrawn uint64    `json:"amount_withdrawn"`
	TransferBlock   uint64    `json:"transfer_block"`
	CompletedAt     time.Time `json:"completed_at"`
}

// StatusRecord is what the claim service returns for a request id.
type StatusRecord struct {
	RequestID uint64
	Status    ClaimStatus
}

// UnmarshalJSON decodes the service's single-key variant encoding, e.g.
// {"id":7,"status":{"Active":{"Processing":null}}}.
func (r *StatusRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID     uint64          `json:"id"`
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	status, err := DecodeClaimStatus(aux.Status)
	if err != nil {
		return err
	}
	r.RequestID = aux.ID
	r.Status = status
	return nil
}

func DecodeClaimStatus(data []byte) (ClaimStatus, error) {
	tag, body, err := singleKey(data)
	if err != nil {
		return nil, errors.Wrap(err, "claim status")
	}

	switch tag {
	case "Active":
		stage, reason, err := decodeStage(body)
		if err != nil {
			return nil, errors.Wrap(err, "claim status Active")
		}
		return ClaimActive{Stage: stage, Reason: reason}, nil
	case "Completed":
		var details ClaimDetails
		if err := json.Unmarshal(body, &details); err != nil {
			return nil, errors.Wrap(err, "claim status Completed")
		}
		return ClaimCompleted{Details: details}, nil
	case "Failed":
		var reason string
		if bytes.HasPrefix(bytes.TrimSpace(body), []byte(`"`)) {
			if err := json.Unmarshal(body, &reason); err != nil {
				return nil, errors.Wrap(err, "claim status Failed")
			}
			return ClaimFailed{Stage: StageFailed, Reason: reason}, nil
		}
		stage, reason, err := decodeStage(body)
		if err != nil {
			return nil, errors.Wrap(err, "claim status Failed")
		}
		if stage != StageTimedOut {
			stage = StageFailed
		}
		return ClaimFailed{Stage: stage, Reason: reason}, nil
	default:
		return nil, errors.Errorf("unknown claim status %q", tag)
	}
}

func decodeStage(data []byte) (ClaimStage, string, error) {
	name, body, err := singleKey(data)
	if err != nil {
		return 0, "", err
	}
	stage, ok := ParseClaimStage(name)
	if !ok {
		return 0, "", errors.Errorf("unknown stage %q", name)
	}
	var reason string
	if stage == StageFailed && len(body) > 0 && !bytes.Equal(body, []byte("null")) {
		if err := json.Unmarshal(body, &reason); err != nil {
			return 0, "", err
		}
	}
	return stage, reason, nil
}

func singleKey(data []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, errors.Errorf("expected one variant key, got %d", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

type ClaimState string

const (
	ClaimStateQueued    ClaimState = "queued"
	ClaimStateActive    ClaimState = "active"
	ClaimStateCompleted ClaimState = "completed"
	ClaimStateFailed    ClaimState = "failed"
	ClaimStateTimeout   ClaimState = "timeout"
	ClaimStateCancelled ClaimState = "cancelled"
	ClaimStateError     ClaimState = "error" // status lookup failed, outcome unknown
)

// Terminal reports whether the claim row will not be updated by polling anymore.
// A timeout is not terminal for the claim itself, only for the poll.
func (s ClaimState) Terminal() bool {
	return s == ClaimStateCompleted || s == ClaimStateFailed
}

type Claim struct {
	ID              uint64     `db:"id" json:"id"`
	Owner           string     `db:"owner" json:"owner"`
	PositionID      string     `db:"position_id" json:"position_id"`
	State           ClaimState `db:"state" json:"state"`
	Progress        string     `db:"progress" json:"progress"`
	Reason          *string    `db:"reason" json:"reason,omitempty"`
	Ledger          *string    `db:"ledger" json:"ledger,omitempty"`
	AmountClaimed   *uint64    `db:"amount_claimed" json:"amount_claimed,omitempty"`
	AmountWithdrawn *uint64    `db:"amount_withdrawn" json:"amount_withdrawn,omitempty"`
	TransferBlock   *uint64    `db:"transfer_block" json:"transfer_block,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type ClaimInput struct {
	PositionID string `json:"position_id" binding:"required"`
}
