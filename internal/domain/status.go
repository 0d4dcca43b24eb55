package domain

type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

type Stage string

const (
	StageIdle       Stage = "idle"
	StageFetching   Stage = "fetching"
	StageProcessing Stage = "processing"
	StagePublishing Stage = "publishing"
	StageNotifying  Stage = "notifying"
	StageError      Stage = "error"
)
