package cache

// ScopedKeyer wraps a Keyer with a prefix so that incompatible producers
// never share entries. The CLI scopes keys by build version, since a new
// encoder may produce different bytes for the same inputs.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer defaults to DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SheetKey generates a prefixed sheet key.
func (k *ScopedKeyer) SheetKey(inputs []InputFingerprint, opts SheetKeyOpts) string {
	return k.prefix + k.inner.SheetKey(inputs, opts)
}
