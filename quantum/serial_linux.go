package quantum

const defaultSerialPortPath = "/dev/ttyACM"
