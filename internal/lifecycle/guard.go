// Package lifecycle centralizes the patient status state machine. Every
// code path that writes Patient.Status must go through Authorize; the
// repositories only ever persist transitions this package has allowed.
//
//	active  <-> inactive     staff-initiated, clinician and above
//	active   -> discharged   auto-discharge, approved request, or admin/supervisor override
//	inactive -> discharged   same three paths
//	discharged -> (terminal)
package lifecycle

import (
	"fmt"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

// Via identifies the code path requesting a status write. Discharge is only
// reachable through the evaluator, an approved request, or a manual
// override; a bare status-field edit by a low-privilege role is never one
// of these.
type Via int

const (
	ViaManual Via = iota
	ViaAutoDischarge
	ViaApprovedRequest
)

var roleRank = map[model.StaffRole]int{
	model.RoleFrontDesk:  0,
	model.RoleTherapist:  1,
	model.RoleClinician:  2,
	model.RoleSupervisor: 3,
	model.RoleAdmin:      4,
}

// RoleAtLeast reports whether role ranks at or above min. Unknown roles
// rank below everything.
func RoleAtLeast(role, min model.StaffRole) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	return r >= roleRank[min]
}

// CanReviewDischarge reports whether role may approve or deny a discharge
// request.
func CanReviewDischarge(role model.StaffRole) bool {
	return RoleAtLeast(role, model.RoleSupervisor)
}

// Authorize decides whether the transition current -> next is legal for the
// given actor role and origin. It returns nil when the write may proceed,
// Forbidden when the role is insufficient, and InvalidState when no such
// transition exists.
func Authorize(current, next model.PatientStatus, role model.StaffRole, via Via) error {
	if _, ok := roleRank[role]; !ok {
		return errors.Forbidden(fmt.Sprintf("unrecognized role %q", role))
	}

	if current == next {
		return errors.InvalidState(fmt.Sprintf("patient is already %s", current))
	}

	if current == model.PatientStatusDischarged {
		return errors.InvalidState("patient is discharged; re-intake is required to reopen the record")
	}

	switch next {
	case model.PatientStatusActive, model.PatientStatusInactive:
		// active <-> inactive, freely, clinical staff and above.
		if !RoleAtLeast(role, model.RoleClinician) {
			return errors.Forbidden(fmt.Sprintf("role %s may not change patient status to %s", role, next))
		}
		return nil

	case model.PatientStatusDischarged:
		switch via {
		case ViaAutoDischarge, ViaApprovedRequest:
			return nil
		case ViaManual:
			if !RoleAtLeast(role, model.RoleSupervisor) {
				return errors.Forbidden(fmt.Sprintf("role %s may not discharge a patient; supervisor or admin override required", role))
			}
			return nil
		}
	}

	return errors.InvalidState(fmt.Sprintf("no transition from %s to %s", current, next))
}
