package worklog

import (
	"docflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

const (
	ActionCreated            = "created"
	ActionSignatoryAdded     = "signatory_added"
	ActionRecipientAdded     = "recipient_added"
	ActionStatusChanged      = "status_changed"
	ActionApproved           = "approved"
	ActionApprovalCompleted  = "approval_completed"
	ActionRejected           = "rejected"
	ActionSignatoryCanceled  = "signatory_canceled"
	ActionWorkflowTerminated = "workflow_terminated"
	ActionPublished          = "published"
	ActionArchived           = "archived"
	ActionUnarchived         = "unarchived"
)

// WorkflowLog is an append-only record of one workflow event of a document.
// Entries are never updated or deleted.
type WorkflowLog struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	DocumentID types.ID `json:"documentId" gorm:"index"`
	UserID     types.ID `json:"userId"`

	Action string `json:"action"`

	// empty when the entry does not record a document status change
	FromStatus state.Status `json:"fromStatus"`
	ToStatus   state.Status `json:"toStatus"`

	Notes string `json:"notes" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (l *WorkflowLog) TableName() string {
	return "document_workflow_logs"
}
