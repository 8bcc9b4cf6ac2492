package models

import "errors"

// Duty lifecycle errors. Handlers map these to HTTP status codes with
// errors.Is; each one names the specific violated precondition so the
// caller never sees a generic "bad request".
var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDriverNotActive     = errors.New("driver is not active")
	ErrDuplicateActiveDuty = errors.New("driver already has an active duty")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleUnavailable  = errors.New("vehicle is not available")
	ErrMissingOdometer     = errors.New("start odometer not supplied and no previous reading exists")
	ErrOdometerRegression  = errors.New("odometer reading is lower than the vehicle's last recorded value")
	ErrInvalidFuelLevel    = errors.New("fuel level must be between 0 and 10")
	ErrNoSchemeAvailable   = errors.New("no active duty scheme available for this branch")

	ErrDutyNotFound   = errors.New("duty not found")
	ErrDutyNotActive  = errors.New("duty is not active")
	ErrDutyNotPending = errors.New("duty is not pending approval")

	ErrSchemeNotFound = errors.New("duty scheme not found")
)
