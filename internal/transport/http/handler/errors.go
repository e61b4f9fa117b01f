package handler

const (
	errInternalServer       = "Internal server error"
	errEmailTaken           = "Email already registered. Please login instead."
	errInvalidCredentials   = "Invalid email or password"
	errNotVerified          = "Please verify your email first. Check your inbox for the verification code."
	errInvalidOrExpiredCode = "Invalid or expired verification code"
	errUserNotFound         = "User not found"
	errMedicationNotFound   = "Medication not found"
	errInvalidDoseTime      = "Time does not match the medication schedule"
	errNotificationNotFound = "Notification not found"
)
