package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPortalTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "python str(datetime)",
			in:   `"2024-03-01 10:20:30.123456"`,
			want: time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC),
		},
		{
			name: "iso with T",
			in:   `"2024-03-01T10:20:30.123456"`,
			want: time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC),
		},
		{
			name: "no microseconds",
			in:   `"2024-03-01 10:20:30"`,
			want: time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var pt PortalTime
			require.NoError(t, json.Unmarshal([]byte(tc.in), &pt))
			require.True(t, tc.want.Equal(pt.Time), "got %v", pt.Time)
		})
	}
}

func TestPortalTime_UnmarshalJSON_Invalid(t *testing.T) {
	var pt PortalTime
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &pt))
}

func TestPortalTime_RoundTrip(t *testing.T) {
	orig := NewPortalTime(time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC))
	b, err := json.Marshal(orig)
	require.NoError(t, err)

	var back PortalTime
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, orig.Equal(back.Time))
}

func TestReport_UnmarshalsBackendShape(t *testing.T) {
	raw := `{
		"id": 7,
		"user_id": "alice",
		"report_name": "bloodwork.pdf",
		"upload_date": "2024-03-01 10:20:30.123456",
		"analysis_result": "all markers normal",
		"doctor_notes": null,
		"doctor_approval": false
	}`

	var r Report
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.Equal(t, int64(7), r.ID)
	require.Equal(t, "alice", r.UserID)
	require.Equal(t, "bloodwork.pdf", r.ReportName)
	require.False(t, r.DoctorApproval)
	require.False(t, r.PendingCommit)
}
