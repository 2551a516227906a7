// file: internals/features/eschools/membership/model/membership_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership = relasi (user, eschool, role). Role scoped per eschool:
// user boleh pegang role berbeda di eschool berbeda, tapi tidak boleh
// dua role sekaligus di eschool yang sama (unique user+eschool).
//
// Ganti role dimodelkan remove+assign, tidak pernah overwrite diam-diam,
// supaya riwayatnya bisa direkonstruksi.
type Membership struct {
	// PK
	MembershipID uuid.UUID `gorm:"column:membership_id;type:uuid;primaryKey" json:"membership_id"`

	// FK → users(user_id)
	MembershipUserID uuid.UUID `gorm:"column:membership_user_id;type:uuid;not null;uniqueIndex:uniq_membership_user_eschool,priority:1" json:"membership_user_id"`

	// FK → eschools(eschool_id)
	MembershipEschoolID uuid.UUID `gorm:"column:membership_eschool_id;type:uuid;not null;uniqueIndex:uniq_membership_user_eschool,priority:2;index:ix_membership_eschool_role,priority:1" json:"membership_eschool_id"`

	// koordinator | bendahara | member
	MembershipRole string `gorm:"column:membership_role;type:varchar(20);not null;index:ix_membership_eschool_role,priority:2" json:"membership_role"`

	MembershipCreatedAt time.Time `gorm:"column:membership_created_at;not null" json:"membership_created_at"`
	MembershipUpdatedAt time.Time `gorm:"column:membership_updated_at;not null" json:"membership_updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.MembershipID == uuid.Nil {
		m.MembershipID = uuid.New()
	}
	now := time.Now()
	if m.MembershipCreatedAt.IsZero() {
		m.MembershipCreatedAt = now
	}
	m.MembershipUpdatedAt = now
	return nil
}

func (m *Membership) BeforeUpdate(tx *gorm.DB) error {
	m.MembershipUpdatedAt = time.Now()
	return nil
}
