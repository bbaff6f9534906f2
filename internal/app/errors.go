package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredential  = errors.New("incorrect email or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAnalysisNotFound   = errors.New("analysis not found")
	ErrAccessDenied       = errors.New("access denied")
)
