package exceptions

import "net/http"

var ErrTaskNotFound = &Exception{
	Kind:       Validation,
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}

var ErrGroupNotFound = &Exception{
	Kind:       Validation,
	Message:    "group not found",
	StatusCode: http.StatusNotFound,
}
