package domain

// ReservationConfig global admission parameters
type ReservationConfig struct {
	TimeUnit                           int // minutes per capacity unit
	CarpetCleaningMultiplier           int
	UserConcurrentReservationLimit     int
	MinutesToAllowReserveInPast        int
	HoursAfterCompanyLimitIsNotChecked int
	TimeZoneID                         string
}

// TimeRequirement minutes of wash time the service set consumes
func (c ReservationConfig) TimeRequirement(services []ServiceType) int {
	for _, s := range services {
		if s == ServiceCarpet {
			return c.CarpetCleaningMultiplier * c.TimeUnit
		}
	}
	return c.TimeUnit
}
