package morph

// Option configures a cast operation.
type Option func(*castConfig)

type castConfig struct {
	only []string
}

// Only restricts the cast to the given dot-separated field paths. Anything
// outside the whitelist is dropped from the input before casting, including
// nested keys: Only("address.city") admits the city of an embedded address
// and nothing else of it.
func Only(paths ...string) Option {
	return func(c *castConfig) { c.only = append(c.only, paths...) }
}
