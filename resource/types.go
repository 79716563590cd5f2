package resource

// Handle is an opaque reference to a value in a table.
// Handle 0 is reserved and always invalid; the bridge uses it as the null
// externref.
type Handle uint32

// Dropper is optionally implemented by values that need cleanup when they
// leave the table.
type Dropper interface {
	Drop()
}
