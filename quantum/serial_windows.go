package quantum

const defaultSerialPortPath = "COM"
