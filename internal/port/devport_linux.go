//go:build linux

package port

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const devPortPath = "/dev/port"

// DevPort reads the i8042 registers through /dev/port, where the file offset
// is the I/O port number.
type DevPort struct {
	fd  int
	buf [1]byte
}

// OpenDevPort opens /dev/port read-only.
func OpenDevPort() (*DevPort, error) {
	fd, err := unix.Open(devPortPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		if os.IsPermission(err) || os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: open %s: %v", ErrNotAvailable, devPortPath, err)
		}
		return nil, fmt.Errorf("open %s: %w", devPortPath, err)
	}
	return &DevPort{fd: fd}, nil
}

// DevPortAvailable checks if /dev/port can be opened by this process.
func DevPortAvailable() (bool, string) {
	if err := unix.Access(devPortPath, unix.R_OK); err != nil {
		return false, fmt.Sprintf("cannot read %s (need root or CAP_SYS_RAWIO): %v", devPortPath, err)
	}
	return true, fmt.Sprintf("found %s", devPortPath)
}

func (d *DevPort) inb(addr int64) byte {
	// A failed read leaves the status bit clear, which the driver treats
	// as "nothing to read".
	if n, err := unix.Pread(d.fd, d.buf[:], addr); err != nil || n != 1 {
		return 0
	}
	return d.buf[0]
}

// ReadStatus reads port 0x64.
func (d *DevPort) ReadStatus() byte {
	return d.inb(StatusPort)
}

// ReadData reads port 0x60.
func (d *DevPort) ReadData() byte {
	return d.inb(DataPort)
}

// Close releases the file descriptor.
func (d *DevPort) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
