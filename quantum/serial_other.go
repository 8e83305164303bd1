//go:build !linux && !darwin && !windows

package quantum

const defaultSerialPortPath = "/dev/tty"
