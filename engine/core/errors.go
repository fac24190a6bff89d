package core

import (
	"errors"
)

var (
	// ErrSwapchainBooting marks a tick that was aborted because the swapchain
	// was stale or mid-recreation. It is an internal recovery signal, never a
	// failure to surface to the caller.
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")

	// ErrUnsupported is returned during initialization when a required
	// capability (extension, feature, memory type) is absent. No resources
	// exist when it is raised.
	ErrUnsupported = errors.New("required capability is not supported")

	// ErrAlreadyLoaded is a contract violation: vertex data for a dataset was
	// loaded a second time while a prior load is staged or mid-flight.
	ErrAlreadyLoaded = errors.New("vertex data already loaded")

	// ErrAlreadyInitialized is a contract violation: a second top-level
	// instance was requested.
	ErrAlreadyInitialized = errors.New("instance already initialized")

	// ErrInvalidRecorderState is a contract violation: a recording call was
	// issued outside the recording state.
	ErrInvalidRecorderState = errors.New("command recorder is not in the required state")
)
