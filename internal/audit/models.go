package audit

import (
	"time"

	"github.com/google/uuid"

	"gemreg/pkg/domain"
)

// Action names an auditable registry operation.
type Action string

const (
	ActionRecordMinted       Action = "record_minted"
	ActionRecordBurned       Action = "record_burned"
	ActionRecordTransferred  Action = "record_transferred"
	ActionTransferDenied     Action = "transfer_denied"
	ActionAttributesSet      Action = "attributes_set"
	ActionBatchMinted        Action = "batch_minted"
	ActionRoleGranted        Action = "role_granted"
	ActionRoleRevoked        Action = "role_revoked"
	ActionRegistryPaused     Action = "registry_paused"
	ActionRegistryUnpaused   Action = "registry_unpaused"
	ActionEnforcementEnabled Action = "enforcement_enabled"
	ActionEnforcementDisabled Action = "enforcement_disabled"
	ActionOracleReplaced     Action = "oracle_replaced"
)

// Event is one append-only audit entry. Actor is the authenticated caller;
// Subject is what the action targeted (a record id or an address).
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Action    Action         `json:"action"`
	Actor     domain.Address `json:"actor"`
	Subject   string         `json:"subject,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
