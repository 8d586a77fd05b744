package instance

import "os"

// GetID identifies this API process in logs: an explicit id, then the
// platform dyno name, then the hostname.
func GetID() string {
	for _, key := range []string{"MEMBERSHIP_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
