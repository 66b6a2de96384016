package service

import "errors"

// Error kinds. Every *Error unwraps to exactly one of these, so callers can
// branch with errors.Is(err, ErrNotFound) without knowing the specific code.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a validation outcome surfaced to the caller as-is.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrVoteNotFound   = &Error{Kind: ErrNotFound, Code: "VOTE_NOT_FOUND", Message: "vote not found"}
	ErrMemberNotFound = &Error{Kind: ErrNotFound, Code: "MEMBER_NOT_FOUND", Message: "member not found"}

	ErrForbiddenDelete = &Error{Kind: ErrForbidden, Code: "FORBIDDEN_DELETE", Message: "only the owner can delete a vote"}

	ErrDuplicatedEvaluation = &Error{Kind: ErrConflict, Code: "DUPLICATED_VOTE_EVALUATION", Message: "vote already evaluated with this type"}
	ErrDuplicatedBookmark   = &Error{Kind: ErrConflict, Code: "DUPLICATED_BOOKMARK", Message: "vote already bookmarked"}
	ErrDuplicatedReport     = &Error{Kind: ErrConflict, Code: "DUPLICATED_VOTE_REPORT", Message: "vote already reported"}
	ErrDuplicatedMember     = &Error{Kind: ErrConflict, Code: "DUPLICATED_MEMBER", Message: "provider id or nickname already registered"}

	ErrInvalidEvaluationType = &Error{Kind: ErrInvalid, Code: "INVALID_EVALUATION_TYPE", Message: "evaluation type must be LIKE or DISLIKE"}
	ErrInvalidProvider       = &Error{Kind: ErrInvalid, Code: "INVALID_PROVIDER", Message: "unsupported login provider"}
	ErrInvalidNickname       = &Error{Kind: ErrInvalid, Code: "INVALID_NICKNAME", Message: "nickname must be 2 to 20 characters"}
	ErrInvalidSearchType     = &Error{Kind: ErrInvalid, Code: "INVALID_SEARCH_TYPE", Message: "unknown search type"}
	ErrEmptyComment          = &Error{Kind: ErrInvalid, Code: "EMPTY_COMMENT", Message: "comment content must not be empty"}
	ErrCommentTooLong        = &Error{Kind: ErrInvalid, Code: "COMMENT_TOO_LONG", Message: "comment content is too long"}

	ErrInvalidToken = &Error{Kind: ErrUnauthorized, Code: "INVALID_TOKEN", Message: "token is invalid or expired"}
)
