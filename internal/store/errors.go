package store

import "errors"

// Validation and outcome errors surfaced to callers. Backend failures are
// reported only where the client is expected to tell the user.
var (
	ErrUnknownChat        = errors.New("unknown chat")
	ErrUnknownVibe        = errors.New("unknown vibe")
	ErrEmptyMessage       = errors.New("message has no content")
	ErrInvalidType        = errors.New("invalid type")
	ErrSendFailed         = errors.New("message could not be sent")
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrGroupNeedsMembers  = errors.New("group needs at least one other member")
	ErrGroupCreateFailed  = errors.New("group could not be created")
	ErrReactionFailed     = errors.New("reaction could not be saved")
	ErrLockFailed         = errors.New("lock state could not be saved")
	ErrEmptyEmoji         = errors.New("emoji is required")
	ErrInvalidPin         = errors.New("pin must be exactly 4 digits")
	ErrNoPinPrompt        = errors.New("no pin prompt is active")
	ErrSelfRequest        = errors.New("cannot connect to yourself")
	ErrBlocked            = errors.New("user is blocked")
	ErrRequestFailed      = errors.New("request could not be processed")
	ErrUploadFailed       = errors.New("upload failed")
	ErrStoryFailed        = errors.New("story could not be posted")
	ErrCallInProgress     = errors.New("a call is already active")
	ErrNoActiveCall       = errors.New("no active call")
	ErrUnknownCall        = errors.New("unknown call")
	ErrInvalidParticipant = errors.New("invalid call participant")
)
