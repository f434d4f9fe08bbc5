package models

// Sender is a known chat account that submits orders. A sender with no
// department rows is unrestricted.
type Sender struct {
	ChannelID   int64   `json:"channel_id"`
	DisplayName string  `json:"display_name"`
	Departments []int64 `json:"departments"`
}
