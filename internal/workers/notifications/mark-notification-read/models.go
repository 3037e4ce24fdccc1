package marknotificationread

type Input struct {
	NotificationID string `json:"notificationId"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Read           bool   `json:"read"`
}
