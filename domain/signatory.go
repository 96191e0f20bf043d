package domain

import (
	"docflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

// Signatory is one ordered slot in a document approval chain. Slots are
// created when the document enters its workflow and are never deleted;
// resolved slots keep their terminal status for audit.
type Signatory struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	DocumentID types.ID `json:"documentId" gorm:"index"`

	Order int `json:"order" gorm:"column:signatory_order"`

	UserID   types.ID `json:"userId"`
	UserName string   `json:"userName"`

	Status  state.SignatoryStatus `json:"status"`
	Comment string                `json:"comment" sql:"type:TEXT"`

	SignedAt types.Timestamp `json:"signedAt" sql:"type:DATETIME(6)"`

	DelegateUserID   types.ID        `json:"delegateUserId"`
	DelegateName     string          `json:"delegateName"`
	SignedByDelegate bool            `json:"signedByDelegate"`
	DelegateSignedAt types.Timestamp `json:"delegateSignedAt" sql:"type:DATETIME(6)"`
}

func (s *Signatory) TableName() string {
	return "document_signatories"
}

type DocumentRecipient struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	DocumentID types.ID `json:"documentId" gorm:"index"`
	UserID     types.ID `json:"userId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *DocumentRecipient) TableName() string {
	return "document_recipients"
}
