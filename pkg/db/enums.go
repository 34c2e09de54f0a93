package db

// Gender models the valid values for users.gender
type Gender int16

const (
	GenderMale Gender = iota + 1
	GenderFemale
	GenderOther
)

// TripStatus models the valid values for trips.status
type TripStatus int16

const (
	TripPlanned TripStatus = iota + 1
	TripConfirmed
	TripInProgress
	TripCompleted
	TripCancelled
)

// BookingStatus models the valid values for bookings.status
type BookingStatus int16

const (
	BookingPending BookingStatus = iota + 1
	BookingConfirmed
	BookingPaid
	BookingCompleted
	BookingCancelledByPassenger
	BookingCancelledByDriver
	BookingNoShow
)

// PaymentStatus models the valid values for payments.status
type PaymentStatus int16

const (
	PaymentPending PaymentStatus = iota + 1
	PaymentProcessing
	PaymentCompleted
	PaymentFailed
	PaymentRefunded
	PaymentPartiallyRefunded
)

// PaymentMethod models the valid values for payments.payment_method
type PaymentMethod int16

const (
	MethodCard PaymentMethod = iota + 1
	MethodWallet
	MethodCash
)

// ComfortLevel models the valid values for vehicles.comfort_level
type ComfortLevel int16

const (
	ComfortBasic ComfortLevel = iota + 1
	ComfortComfort
	ComfortPremium
)
