package quantum

const defaultSerialPortPath = "/dev/cu.usbmodem"
