package quantum

import (
	"encoding/binary"
	"fmt"
)

const cmdTerminator = '!'

// Code is a command code.
type Code byte

// Command codes.
const (
	CodeGetVoltage       Code = 0x55
	CodeReadCalibration  Code = 0x83
	CodeSetCalibration   Code = 0x84
	CodeReadSerialNumber Code = 0x87
	CodeGetLoggedEntry   Code = 0xf2
	CodeGetLoggingCount  Code = 0xf3
	CodeEraseLoggedData  Code = 0xf4
)

var codeTexts = map[Code]string{
	CodeGetVoltage:       "get voltage",
	CodeReadCalibration:  "read calibration",
	CodeSetCalibration:   "set calibration",
	CodeReadSerialNumber: "read serial number",
	CodeGetLoggedEntry:   "get logged entry",
	CodeGetLoggingCount:  "get logging count",
	CodeEraseLoggedData:  "erase logged data",
}

func (c Code) String() string {
	if s, ok := codeTexts[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown code %#02x", byte(c))
}

// Command represents a sensor command.
type Command struct {
	Code Code
	Args []byte
}

// Commands without arguments.
var (
	GetVoltageCmd       = Command{Code: CodeGetVoltage}
	ReadCalibrationCmd  = Command{Code: CodeReadCalibration}
	ReadSerialNumberCmd = Command{Code: CodeReadSerialNumber}
	GetLoggingCountCmd  = Command{Code: CodeGetLoggingCount}
	EraseLoggedDataCmd  = Command{Code: CodeEraseLoggedData}
)

// SetCalibrationCmd returns the command storing a calibration pair on the sensor.
func SetCalibrationCmd(offset, multiplier float32) Command {
	args := make([]byte, 0, 2*payloadSize)
	args = appendFloat32(args, offset)
	args = appendFloat32(args, multiplier)
	return Command{Code: CodeSetCalibration, Args: args}
}

// GetLoggedEntryCmd returns the command reading the logged entry with index idx.
func GetLoggedEntryCmd(idx uint32) Command {
	return Command{Code: CodeGetLoggedEntry, Args: binary.LittleEndian.AppendUint32(nil, idx)}
}

// Bytes returns the wire encoding of the command.
func (c Command) Bytes() []byte {
	b := make([]byte, 0, len(c.Args)+2)
	b = append(b, byte(c.Code))
	b = append(b, c.Args...)
	return append(b, cmdTerminator)
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Code.String()
	}
	return fmt.Sprintf("%s % x", c.Code, c.Args)
}
