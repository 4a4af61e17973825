package model

// Setting keys read by the service itself.
const (
	SettingMaintenanceMode = "maintenance_mode"
	SettingClubName        = "club_name"
	SettingClubDescription = "club_description"
)

// Setting mirrors a row of the `settings` table.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
