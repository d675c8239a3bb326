package errors

const (
	NoTokenError              = "No token, authorization denied"
	InvalidTokenError         = "Token is not valid"
	InvalidCredentials        = "Invalid username or password"
	AdminRequired             = "Access denied. Admin privileges required."
	UserNotFound              = "User not found"
	UsernameExists            = "Username already exists"
	AccommodationIDRequired   = "Accommodation ID is required"
	AccommodationNotFound     = "Accommodation not found"
	AccommodationAccessDenied = "Access denied to this accommodation"
	AccommodationNameExists   = "Accommodation with this name already exists"
	AdministratorsRequired    = "Please provide administrators array and action (add/remove)"
	InvalidAdministratorsAct  = "Invalid action. Use \"add\" or \"remove\"."
	CustomFieldsRequired      = "Please provide customFields array"
	GuestNotFound             = "Guest not found"
	GuestAccessDenied         = "Access denied to this guest"
	GuestDeleteDenied         = "Access denied. Only admins can delete guests."
	NoCSVFileError            = "No CSV file uploaded"
	CSVStreamError            = "Error processing CSV file"
	CSVInsertError            = "Error saving guests"
	DatabaseError             = "Database error"
)
