package domain

// Defaults applied when configuration omits a value
const (
	DefaultTimeUnit                           = 12
	DefaultCarpetCleaningMultiplier           = 2
	DefaultUserConcurrentReservationLimit     = 2
	DefaultMinutesToAllowReserveInPast        = 120
	DefaultHoursAfterCompanyLimitIsNotChecked = 11
	DefaultTimeZoneID                         = "Europe/Budapest"
)

const (
	MaxCommentLength = 1000
	MaxPlateLength   = 20
)

const (
	TimeFormat = "15:04"
	DateFormat = "2006-01-02"
)

// ActiveStates states counted against the concurrent-reservation limit
var ActiveStates = []State{
	StateSubmittedNotActual,
	StateReminderSentWaitingForKey,
	StateDropoffAndLocationConfirmed,
	StateWashInProgress,
	StateNotYetPaid,
}
