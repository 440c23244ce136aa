package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		current  model.PatientStatus
		next     model.PatientStatus
		role     model.StaffRole
		via      Via
		wantCode errors.ErrorCode // zero means allowed
	}{
		{
			name:    "clinician deactivates",
			current: model.PatientStatusActive,
			next:    model.PatientStatusInactive,
			role:    model.RoleClinician,
			via:     ViaManual,
		},
		{
			name:    "clinician reactivates",
			current: model.PatientStatusInactive,
			next:    model.PatientStatusActive,
			role:    model.RoleClinician,
			via:     ViaManual,
		},
		{
			name:     "frontdesk may not deactivate",
			current:  model.PatientStatusActive,
			next:     model.PatientStatusInactive,
			role:     model.RoleFrontDesk,
			via:      ViaManual,
			wantCode: errors.ErrForbidden,
		},
		{
			name:     "frontdesk may not discharge",
			current:  model.PatientStatusActive,
			next:     model.PatientStatusDischarged,
			role:     model.RoleFrontDesk,
			via:      ViaManual,
			wantCode: errors.ErrForbidden,
		},
		{
			name:     "clinician may not manually discharge",
			current:  model.PatientStatusActive,
			next:     model.PatientStatusDischarged,
			role:     model.RoleClinician,
			via:      ViaManual,
			wantCode: errors.ErrForbidden,
		},
		{
			name:    "admin manual discharge override",
			current: model.PatientStatusActive,
			next:    model.PatientStatusDischarged,
			role:    model.RoleAdmin,
			via:     ViaManual,
		},
		{
			name:    "supervisor manual discharge override",
			current: model.PatientStatusInactive,
			next:    model.PatientStatusDischarged,
			role:    model.RoleSupervisor,
			via:     ViaManual,
		},
		{
			name:    "auto discharge needs no elevated role",
			current: model.PatientStatusActive,
			next:    model.PatientStatusDischarged,
			role:    model.RoleClinician,
			via:     ViaAutoDischarge,
		},
		{
			name:    "approved request discharges inactive patient",
			current: model.PatientStatusInactive,
			next:    model.PatientStatusDischarged,
			role:    model.RoleSupervisor,
			via:     ViaApprovedRequest,
		},
		{
			name:     "discharged is terminal even for admin",
			current:  model.PatientStatusDischarged,
			next:     model.PatientStatusActive,
			role:     model.RoleAdmin,
			via:      ViaManual,
			wantCode: errors.ErrInvalidState,
		},
		{
			name:     "same status write rejected",
			current:  model.PatientStatusActive,
			next:     model.PatientStatusActive,
			role:     model.RoleAdmin,
			via:      ViaManual,
			wantCode: errors.ErrInvalidState,
		},
		{
			name:     "unknown role rejected",
			current:  model.PatientStatusActive,
			next:     model.PatientStatusInactive,
			role:     model.StaffRole("janitor"),
			via:      ViaManual,
			wantCode: errors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.current, tt.next, tt.role, tt.via)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(model.RoleAdmin, model.RoleSupervisor))
	assert.True(t, RoleAtLeast(model.RoleSupervisor, model.RoleSupervisor))
	assert.False(t, RoleAtLeast(model.RoleTherapist, model.RoleClinician))
	assert.False(t, RoleAtLeast(model.StaffRole("nope"), model.RoleFrontDesk))
}

func TestCanReviewDischarge(t *testing.T) {
	assert.True(t, CanReviewDischarge(model.RoleSupervisor))
	assert.True(t, CanReviewDischarge(model.RoleAdmin))
	assert.False(t, CanReviewDischarge(model.RoleClinician))
	assert.False(t, CanReviewDischarge(model.RoleFrontDesk))
}
