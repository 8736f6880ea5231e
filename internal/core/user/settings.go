package user

// Settings are the per-user preferences stored by the backend. The client
// only changes EmailNotifications; the rest is displayed.
type Settings struct {
	EmailNotifications bool   `json:"emailNotifications"`
	TaskReminders      bool   `json:"taskReminders"`
	WeeklyReports      bool   `json:"weeklyReports"`
	Theme              string `json:"theme"`
	Language           string `json:"language,omitempty"`
	TimeZone           string `json:"timeZone,omitempty"`
	ItemsPerPage       int    `json:"itemsPerPage"`
}

// DefaultSettings mirrors what the backend creates for a new account.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications: true,
		TaskReminders:      true,
		Theme:              "light",
		Language:           "en",
		TimeZone:           "UTC",
		ItemsPerPage:       10,
	}
}
