package common

import "errors"

var (
	// ErrModulePaused is returned when an operation targets a paused module.
	ErrModulePaused = errors.New("module paused")
	// ErrEmergencyHalt is returned when the system-wide emergency switch is
	// engaged and the operation is not permitted during the halt.
	ErrEmergencyHalt = errors.New("emergency halt in effect")
)

// PauseView exposes the module-level pause switches maintained by the admin
// collaborator. The escrow engine consumes it read-only.
type PauseView interface {
	IsPaused(module string) bool
}

// EmergencyView exposes the system-wide emergency switch.
type EmergencyView interface {
	InEmergency() bool
}

// Guard returns ErrModulePaused when the named module is paused. A nil view or
// empty module name is treated as unpaused.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// GuardEmergency returns ErrEmergencyHalt when the emergency switch is set.
func GuardEmergency(v EmergencyView) error {
	if v == nil {
		return nil
	}
	if v.InEmergency() {
		return ErrEmergencyHalt
	}
	return nil
}
