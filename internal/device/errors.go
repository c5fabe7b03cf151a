// v0
// internal/device/errors.go
package device

import "fmt"

// NotFoundError reports a lookup or mutation against a device id that is
// not part of the registry.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("device %q not found", e.ID)
}

// InvalidValueError reports a mutation that cannot be applied to the
// target device: a command aimed at the wrong device kind, or a value
// that cannot be brought into range by the documented clamp policy.
type InvalidValueError struct {
	ID     string
	Field  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("device %q: invalid %s: %s", e.ID, e.Field, e.Reason)
}
