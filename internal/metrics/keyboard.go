package metrics

// KeyboardMetrics groups the metrics the keyboard driver updates.
type KeyboardMetrics struct {
	registry *Registry

	CodesCaptured   *Counter
	CodesDropped    *Counter
	CodesUnknown    *Counter
	PauseKeys       *Counter
	KeysUnmapped    *Counter
	CharsEmitted    *Counter
	ConsoleSwitches *Counter

	QueueDepth *Gauge
	LockState  *Gauge

	DrainBatch *Histogram
}

// NewKeyboardMetrics registers the keyboard metrics in registry, or in the
// default registry when nil.
func NewKeyboardMetrics(registry *Registry) *KeyboardMetrics {
	if registry == nil {
		registry = Default()
	}
	return &KeyboardMetrics{
		registry: registry,

		CodesCaptured:   registry.Counter("scancodes_captured_total", "Scancodes queued for interpretation"),
		CodesDropped:    registry.Counter("scancodes_dropped_total", "Scancodes dropped because the queue was full"),
		CodesUnknown:    registry.Counter("scancodes_unknown_total", "Scancodes with no set 1 equivalent or no key index"),
		PauseKeys:       registry.Counter("pause_sequences_total", "Pause key sequences consumed at capture"),
		KeysUnmapped:    registry.Counter("keys_unmapped_total", "Key events the layout does not map"),
		CharsEmitted:    registry.Counter("chars_emitted_total", "Bytes written to the display"),
		ConsoleSwitches: registry.Counter("console_switches_total", "Virtual console switch requests"),

		QueueDepth: registry.Gauge("queue_depth", "Codes waiting in the capture queue"),
		LockState:  registry.Gauge("lock_leds", "Lock key state as an LED bitmask"),

		DrainBatch: registry.Histogram("drain_batch_size", "Codes processed per drain", BatchBuckets),
	}
}

// Registry returns the registry the metrics live in.
func (m *KeyboardMetrics) Registry() *Registry {
	return m.registry
}
