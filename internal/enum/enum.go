package enum

// --- Order and dish state machines (persisted verbatim) ---

const (
	OrderStatusNew        = "New"
	OrderStatusInProgress = "In progress"
	OrderStatusClosed     = "Closed"

	// OrderStatusSent is a legacy order-level value written by old
	// releases. It is normalized to OrderStatusInProgress on load and is
	// never written back.
	OrderStatusSent = "Sent"
)

const (
	DishStatusNew  = "New"
	DishStatusSent = "Sent"
)

// --- Configurable labels (no DB constraint) ---

const (
	ProductTypeFood  = "Food"
	ProductTypeDrink = "Drink"
	ProductTypeOther = "Other"
)

const (
	ShapeRectangle = "Rectangle"
	ShapeCircle    = "Circle"
)
