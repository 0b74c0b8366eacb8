package appointment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{raw: "programada", want: StatusScheduled},
		{raw: "confirmada", want: StatusConfirmed},
		{raw: "completada", want: StatusCompleted},
		{raw: "cancelada", want: StatusCancelled},
		{raw: "scheduled", want: StatusScheduled},
		{raw: "Confirmed", want: StatusConfirmed},
		{raw: " completed ", want: StatusCompleted},
		{raw: "canceled", want: StatusCancelled},
		{raw: "cancelled", want: StatusCancelled},
		{raw: "pending", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_UnmarshalKeepsUnknownValues(t *testing.T) {
	var cmd CreateAppointmentCommand
	require.NoError(t, json.Unmarshal([]byte(`{"estado":"confirmed"}`), &cmd))
	assert.Equal(t, StatusConfirmed, cmd.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"estado":"maybe"}`), &cmd))
	assert.Equal(t, Status("maybe"), cmd.Status)
	assert.False(t, cmd.Status.IsValid())
}

func TestUpdateAppointmentCommand_ApplyChangesOnlySuppliedFields(t *testing.T) {
	notes := "bring previous results"
	when := time.Date(2030, time.January, 2, 9, 30, 0, 0, time.UTC)
	a := &Appointment{
		ID:          7,
		PatientID:   3,
		ScheduledAt: when,
		Reason:      "checkup",
		Status:      StatusScheduled,
		Notes:       &notes,
	}

	var cmd UpdateAppointmentCommand
	require.NoError(t, json.Unmarshal([]byte(`{"estado":"confirmada","notas":null}`), &cmd))
	cmd.Apply(a)

	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Nil(t, a.Notes)
	assert.Equal(t, "checkup", a.Reason)
	assert.Equal(t, when, a.ScheduledAt)
	assert.Equal(t, uint(3), a.PatientID)
}
