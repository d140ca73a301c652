package validation

// User-visible rejection reasons. Clients match on these strings; keep them stable.
const (
	MsgNoServices         = "Please choose at least one service."
	MsgNoSlotForStart     = "The start time does not match any slot."
	MsgNotSameDay         = "Reservation start and end must be on the same day."
	MsgEndBeforeStart     = "Reservation end must be later than its start."
	MsgInPast             = "Reservation cannot be made in the past."
	MsgNotInSlot          = "Reservation can be made to slots only."
	MsgConcurrentLimit    = "You cannot have more than %d concurrent reservations."
	MsgBlocked            = "Sorry, this time is blocked. Please choose another date."
	MsgCompanyLimit       = "Sorry, your company has reached its limit for this day."
	MsgDayFull            = "Sorry, there are no more free places for this day."
	MsgNotEnoughTimeToday = "Sorry, there is not enough time left today."
	MsgSlotFull           = "Sorry, there is not enough time in that slot. Please choose another one."
)

// Check names used in logs and metrics
const (
	CheckServices     = "services"
	CheckEndDate      = "end_date"
	CheckSameDay      = "same_day"
	CheckEndAfter     = "end_after_start"
	CheckPast         = "not_in_past"
	CheckSlot         = "fits_slot"
	CheckConcurrency  = "concurrent_limit"
	CheckBlocker      = "blocker"
	CheckDayCapacity  = "day_capacity"
	CheckSlotCapacity = "slot_capacity"
)
