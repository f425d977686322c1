//go:build !linux

package port

// DevPort is only implemented on Linux.
type DevPort struct{}

// OpenDevPort always fails off Linux.
func OpenDevPort() (*DevPort, error) {
	return nil, ErrNotAvailable
}

// DevPortAvailable reports that /dev/port is Linux only.
func DevPortAvailable() (bool, string) {
	return false, "/dev/port access is only supported on linux"
}

func (d *DevPort) ReadStatus() byte { return 0 }
func (d *DevPort) ReadData() byte   { return 0 }
func (d *DevPort) Close() error     { return nil }
