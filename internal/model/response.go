package model

type FailureKind string

const (
	FailureConnection FailureKind = "connection"
	FailureQuery      FailureKind = "query"
	FailureNotFound   FailureKind = "not_found"
)

func (k FailureKind) IsValid() bool {
	switch k {
	case FailureConnection, FailureQuery, FailureNotFound:
		return true
	default:
		return false
	}
}

// TaskResponse is the envelope every task operation resolves to. Business
// failures set Successful false and Kind; the call itself still completes.
type TaskResponse struct {
	Successful bool        `json:"successful"`
	Message    string      `json:"message"`
	Kind       FailureKind `json:"kind,omitempty"`
	Task       *Task       `json:"task,omitempty"`
}

type ListResponse struct {
	Successful bool        `json:"successful"`
	Message    string      `json:"message"`
	Kind       FailureKind `json:"kind,omitempty"`
	List       *List       `json:"list,omitempty"`
}

// TaskIDResponse carries projected task IDs under the historical wire
// field name "tasks".
type TaskIDResponse struct {
	Successful bool        `json:"successful"`
	Message    string      `json:"message"`
	Kind       FailureKind `json:"kind,omitempty"`
	TaskIDs    []string    `json:"tasks"`
}

// ListIDResponse carries projected list IDs under the historical wire
// field name "lists".
type ListIDResponse struct {
	Successful bool        `json:"successful"`
	Message    string      `json:"message"`
	Kind       FailureKind `json:"kind,omitempty"`
	ListIDs    []string    `json:"lists"`
}

type CountResponse struct {
	Successful bool        `json:"successful"`
	Message    string      `json:"message"`
	Kind       FailureKind `json:"kind,omitempty"`
	Count      int64       `json:"count"`
}
