package usecase

import "errors"

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrJobStillProcessing = errors.New("cannot delete a job that is still processing")
	ErrCollectionNotFound = errors.New("collection not found")
)
