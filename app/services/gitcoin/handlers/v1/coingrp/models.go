package coingrp

type newSubmission struct {
	Message string `json:"message" validate:"required"`
	Owner   string `json:"owner" validate:"required"`
}

type submission struct {
	Success bool `json:"success"`

	// GitcoinAssigned holds the mined coin on success and false on a
	// rejected attempt, which clients test as a truthy value.
	GitcoinAssigned any    `json:"gitcoin_assigned"`
	NewTarget       string `json:"new_target"`
}

type target struct {
	Target string `json:"target"`
}

type ownedCoin struct {
	Value   int    `json:"value"`
	Message string `json:"message"`
	Owner   string `json:"owner"`
}
