package domain

// Owner identifies who a session, drill or preference belongs to: a signed-in
// user, or an anonymous client identified by its device id.
type Owner struct {
	UserID   string
	DeviceID string
}

// Authenticated reports whether the owner is a signed-in user.
func (o Owner) Authenticated() bool { return o.UserID != "" }

func (o Owner) IsZero() bool { return o.UserID == "" && o.DeviceID == "" }

// Key is the storage key of the owner. A user id wins over a device id.
func (o Owner) Key() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	if o.DeviceID != "" {
		return "device:" + o.DeviceID
	}
	return ""
}
