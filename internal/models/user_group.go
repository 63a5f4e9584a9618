package models

import "github.com/google/uuid"

type UserGroupGrade string

const (
	GradeLeader      UserGroupGrade = "LEADER"
	GradeManager     UserGroupGrade = "MANAGER"
	GradeParticipant UserGroupGrade = "PARTICIPANT"
)

func ValidGrade(grade UserGroupGrade) bool {
	switch grade {
	case GradeLeader, GradeManager, GradeParticipant:
		return true
	default:
		return false
	}
}

// CanInvite reports whether a member with this grade may invite others.
func (g UserGroupGrade) CanInvite() bool {
	return g == GradeLeader || g == GradeManager
}

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipRemoved MembershipStatus = "removed"
)

// UserGroup is the membership edge between a user and a group. Leaving a
// group flips Status to removed instead of deleting the row; every lookup
// must filter on Status. A partial unique index on (user_id, group_id)
// WHERE status = 'active' keeps at most one live edge per pair under
// concurrent joins (see internal/database).
type UserGroup struct {
	BaseModel
	UserID  uuid.UUID        `json:"userID" gorm:"type:uuid;not null;index"`
	GroupID uuid.UUID        `json:"groupID" gorm:"type:uuid;not null;index"`
	Grade   UserGroupGrade   `json:"grade" gorm:"type:varchar(20);not null"`
	Status  MembershipStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	User    User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group   Group            `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}
