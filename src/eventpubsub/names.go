package eventpubsub

const (
	MintedEvent       = "MintedEvent"
	ExercisedEvent    = "ExercisedEvent"
	RedeemedEvent     = "RedeemedEvent"
	ClosedEvent       = "ClosedEvent"
	CacheUpdatedEvent = "CacheUpdatedEvent"
	MarketCreated     = "MarketCreatedEvent"
	Error             = "DefaultError"
)
