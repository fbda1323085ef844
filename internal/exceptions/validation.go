package exceptions

import "net/http"

var ErrTitleRequired = &Exception{
	Kind:       Validation,
	Message:    "title is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidPriority = &Exception{
	Kind:       Validation,
	Message:    "priority must be one of low, medium, high",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidCategory = &Exception{
	Kind:       Validation,
	Message:    "category must be one of work, personal, shopping, health, other",
	StatusCode: http.StatusBadRequest,
}

var ErrGroupNameRequired = &Exception{
	Kind:       Validation,
	Message:    "group name is required",
	StatusCode: http.StatusBadRequest,
}

var ErrGroupNameTooLong = &Exception{
	Kind:       Validation,
	Message:    "group name must be at most 100 characters",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidMemberStatus = &Exception{
	Kind:       Validation,
	Message:    "status must be one of pending, in-progress, completed, cancelled",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidJSON = &Exception{
	Kind:       Validation,
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}
