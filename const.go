package book

const (
	// Version is the current version of the reconstruction engine.
	Version = "v1.0.0"

	// TopDepth is the number of visible price levels per side in a
	// snapshot.
	TopDepth = 10

	// RTypeMBP10 is the record-type discriminator stamped on every
	// emitted snapshot.
	RTypeMBP10 = 10

	// defaultOrderCapacity pre-sizes the order index for concurrently
	// resting orders.
	defaultOrderCapacity = 8192

	// levelIDsCapacity pre-sizes a level's resting order-id set; most
	// levels hold only a few orders.
	levelIDsCapacity = 16
)
