package domain

import (
	"docflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

type Document struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Code string   `json:"code" gorm:"unique_index"`

	Title       string `json:"title"`
	Description string `json:"description"`
	TypeCode    string `json:"typeCode"`
	Version     string `json:"version"`

	Status state.Status `json:"status"`

	CreatorID   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	ArchiveTime types.Timestamp `json:"archiveTime" sql:"type:DATETIME(6)"`
}

func (d *Document) TableName() string {
	return "documents"
}

// DocumentDetail carries the document with its signatory chain appended.
type DocumentDetail struct {
	Document

	Signatories []Signatory `json:"signatories" gorm:"-"`
}

type DocumentCreation struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TypeCode    string `json:"typeCode" binding:"required"`

	Signatories  []SignatoryAssignment `json:"signatories"`
	RecipientIDs []types.ID            `json:"recipientIds"`
}

type SignatoryAssignment struct {
	UserID         types.ID `json:"userId" binding:"required"`
	DelegateUserID types.ID `json:"delegateUserId"`
}

type DocumentQuery struct {
	Title    string         `form:"title"`
	Statuses []state.Status `form:"status"`

	ArchiveState ArchiveStateFilter `form:"archiveState"`
}

type ArchiveStateFilter string

const (
	ArchiveStateOff = ArchiveStateFilter("")
	ArchiveStateOn  = ArchiveStateFilter("on")
	ArchiveStateAll = ArchiveStateFilter("all")
)

type DocumentSelection struct {
	DocumentIDList []types.ID `json:"documentIdList"`
}
