package main

import "errors"

var (
	errMissingContent = errors.New("content is required (argument or --file)")
	errActionNotFound = errors.New("action not found")
)
