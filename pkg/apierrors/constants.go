package apierrors

const (
	MsgFailListTask       = "errorListTask"
	MsgFailCreateTask     = "failCreateTask"
	MsgFailUpdateTask     = "failUpdateTask"
	MsgFailDeleteTask     = "failDeleteTask"
	MsgFailReorderTasks   = "failReorderTasks"
	MsgInternalError      = "internalError"
	MsgInvalidJSON        = "invalidJSON"
	MsgInvalidTaskPayload = "invalidTaskPayload"
	MsgTaskNotFound       = "taskNotFound"
	MsgTitleRequired      = "titleRequired"
)
