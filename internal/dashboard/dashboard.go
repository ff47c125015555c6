// Package dashboard holds the static content of the portal dashboard.
package dashboard

import "time"

// DateLayout is the heading date format, e.g. "Friday, May 16, 2025".
const DateLayout = "Monday, January 2, 2006"

type Appointment struct {
	Patient string `json:"patient"`
	Kind    string `json:"kind"`
	Time    string `json:"time"`
}

type Notification struct {
	Message string `json:"message"`
	Age     string `json:"age"`
}

type SecurityCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Percent int    `json:"percent"`
}

type LastLogin struct {
	When   string `json:"when"`
	Detail string `json:"detail"`
}

type Security struct {
	Checks    []SecurityCheck `json:"checks"`
	LastLogin LastLogin       `json:"lastLogin"`
}

type Activity struct {
	Patient string `json:"patient"`
	Action  string `json:"action"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

// Dashboard is everything the dashboard view renders.
type Dashboard struct {
	Title         string         `json:"title"`
	Practitioner  string         `json:"practitioner"`
	Date          string         `json:"date"`
	Appointments  []Appointment  `json:"appointments"`
	Notifications []Notification `json:"notifications"`
	Security      Security       `json:"security"`
	Activity      []Activity     `json:"activity"`
}

// Snapshot returns the dashboard content dated now.
func Snapshot(now time.Time) Dashboard {
	return Dashboard{
		Title:        "HealthVoice Portal",
		Practitioner: "Dr. Sarah Johnson",
		Date:         now.Format(DateLayout),
		Appointments: []Appointment{
			{Patient: "John Smith", Kind: "Annual Checkup", Time: "09:30 AM"},
			{Patient: "Emily Chen", Kind: "Follow-up", Time: "11:00 AM"},
			{Patient: "Robert Davis", Kind: "Consultation", Time: "02:15 PM"},
		},
		Notifications: []Notification{
			{Message: "Lab results uploaded for patient #38291", Age: "15 minutes ago"},
			{Message: "Staff meeting scheduled for 4PM in Room 305", Age: "2 hours ago"},
			{Message: "Prescription renewal request from M. Thompson", Age: "Yesterday"},
		},
		Security: Security{
			Checks: []SecurityCheck{
				{Name: "Voice Authentication", Status: "Active", Percent: 100},
				{Name: "Multi-Factor Auth", Status: "Active", Percent: 100},
			},
			LastLogin: LastLogin{
				When:   "Just now",
				Detail: "Voice biometrics verified with 98.2% confidence",
			},
		},
		Activity: []Activity{
			{Patient: "Michael Thompson", Action: "Prescription Renewal", Date: "May 16, 2025", Status: "Pending"},
			{Patient: "Emma Wilson", Action: "Lab Results", Date: "May 15, 2025", Status: "Completed"},
			{Patient: "David Johnson", Action: "Appointment Request", Date: "May 15, 2025", Status: "Confirmed"},
			{Patient: "Sophia Lee", Action: "Medical Records Update", Date: "May 14, 2025", Status: "Processed"},
		},
	}
}
