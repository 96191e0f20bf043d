package account

import (
	"github.com/fundwit/go-commons/types"
)

type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	SystemAdminPermission = Permission{ID: "system:admin", Name: "system admin"}
	SystemViewPermission  = Permission{ID: "system:view", Name: "system view"}
)

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name" gorm:"unique_index"`
	Nickname string   `json:"nickname"`
	Secret   string   `json:"-"`

	// short department code used as document code prefix, e.g. QA
	Department string `json:"department"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (u *User) TableName() string {
	return "users"
}

type UserInfo struct {
	ID         types.ID `json:"id"`
	Name       string   `json:"name"`
	Nickname   string   `json:"nickname"`
	Department string   `json:"department"`
}

func (u *UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

type UserPermission struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	UserID     types.ID `json:"userId" gorm:"index"`
	Permission string   `json:"permission"`
}

func (p *UserPermission) TableName() string {
	return "user_permissions"
}

type UserCreation struct {
	Name       string `json:"name" binding:"required"`
	Secret     string `json:"secret" binding:"required"`
	Nickname   string `json:"nickname"`
	Department string `json:"department"`
}

type UserUpdation struct {
	Nickname string `json:"nickname"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" binding:"required"`
	NewSecret      string `json:"newSecret" binding:"required"`
}
