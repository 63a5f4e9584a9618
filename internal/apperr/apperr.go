// Package apperr defines the domain error kinds returned by the service
// layer. Each kind carries a fixed HTTP status and user-facing message;
// handlers translate them with errors.As and never leak internals.
package apperr

import "net/http"

type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrNoSuchUser          = &Error{Code: "NO_SUCH_USER", Status: http.StatusNotFound, Message: "user not found"}
	ErrNotFoundGroup       = &Error{Code: "NOT_FOUND_GROUP", Status: http.StatusNotFound, Message: "group not found"}
	ErrNotFoundUserGroup   = &Error{Code: "NOT_FOUND_USER_GROUP", Status: http.StatusNotFound, Message: "group membership not found"}
	ErrNotFoundCategory    = &Error{Code: "NOT_FOUND_CATEGORY", Status: http.StatusNotFound, Message: "category not found"}
	ErrNotFoundAchievement = &Error{Code: "NOT_FOUND_ACHIEVEMENT", Status: http.StatusNotFound, Message: "achievement not found"}

	ErrDuplicatedJoin   = &Error{Code: "DUPLICATED_JOIN", Status: http.StatusConflict, Message: "already a member of this group"}
	ErrDuplicatedInvite = &Error{Code: "DUPLICATED_INVITE", Status: http.StatusConflict, Message: "user is already a member of this group"}

	ErrLeaderNotAllowedToLeave      = &Error{Code: "LEADER_NOT_ALLOWED_TO_LEAVE", Status: http.StatusForbidden, Message: "leader cannot leave the group"}
	ErrOnlyLeaderAllowedAssignGrade = &Error{Code: "ONLY_LEADER_ALLOWED_ASSIGN_GRADE", Status: http.StatusForbidden, Message: "only the leader can assign grades"}
	ErrInvitePermissionDenied       = &Error{Code: "INVITE_PERMISSION_DENIED", Status: http.StatusForbidden, Message: "no permission to invite members"}
	ErrLeaderGradeChangeNotAllowed  = &Error{Code: "LEADER_GRADE_CHANGE_NOT_ALLOWED", Status: http.StatusBadRequest, Message: "leadership changes require promoting a new leader"}

	ErrFailFileTask = &Error{Code: "FAIL_FILE_TASK", Status: http.StatusInternalServerError, Message: "failed storing file"}
)
