package dashboard_test

import (
	"testing"
	"time"

	"github.com/alkime/healthvoice/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	d := dashboard.Snapshot(time.Date(2025, time.May, 16, 14, 0, 0, 0, time.UTC))

	assert.Equal(t, "Friday, May 16, 2025", d.Date)
	assert.Equal(t, "Dr. Sarah Johnson", d.Practitioner)
	require.Len(t, d.Appointments, 3)
	assert.Equal(t, "John Smith", d.Appointments[0].Patient)
	require.Len(t, d.Notifications, 3)
	require.Len(t, d.Activity, 4)
	assert.Equal(t, "Processed", d.Activity[3].Status)

	for _, c := range d.Security.Checks {
		assert.Equal(t, 100, c.Percent, c.Name)
	}

	assert.Contains(t, d.Security.LastLogin.Detail, "98.2% confidence")
}
