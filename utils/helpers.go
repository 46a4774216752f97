package utils

// IsValidContentType reports whether t is one of the enumerated content kinds.
func IsValidContentType(t string) bool {
	switch t {
	case "video", "news", "3d", "image":
		return true
	default:
		return false
	}
}

// IsValidEventType reports whether t is one of the enumerated engagement signals.
func IsValidEventType(t string) bool {
	switch t {
	case "scan", "viewDuration", "click", "share":
		return true
	default:
		return false
	}
}
